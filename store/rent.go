package store

// Deposit parameters for funding fixed-size accounts.
const (
	// AccountStorageOverhead is charged on top of every account's data size.
	AccountStorageOverhead = 128

	// LamportsPerByteYear is the storage price.
	LamportsPerByteYear = 3480

	// ExemptionThresholdYears is how many years of storage a deposit prepays.
	ExemptionThresholdYears = 2
)

// RentExemptMinimum returns the deposit needed to hold an account of space bytes.
func RentExemptMinimum(space int) uint64 {
	return uint64(AccountStorageOverhead+space) * LamportsPerByteYear * ExemptionThresholdYears
}
