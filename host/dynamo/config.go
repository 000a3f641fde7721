package dynamo

// Config holds configuration for the DynamoDB Host.
type Config struct {
	// AccountTable is the name of the account table, keyed by "pk" (S).
	// Default: "tweetstore_accounts"
	AccountTable string

	// BalanceTable is the name of the balance table, keyed by "pk" (S).
	// Default: "tweetstore_balances"
	BalanceTable string
}

// DefaultConfig returns the default table names.
func DefaultConfig() Config {
	return Config{
		AccountTable: "tweetstore_accounts",
		BalanceTable: "tweetstore_balances",
	}
}

// validate fills in missing table names.
func (c *Config) validate() {
	if c.AccountTable == "" {
		c.AccountTable = "tweetstore_accounts"
	}
	if c.BalanceTable == "" {
		c.BalanceTable = "tweetstore_balances"
	}
}
