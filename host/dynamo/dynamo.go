// Package dynamo provides a DynamoDB Host for the tweet record store.
//
// Accounts live in one table keyed by the hex address, balances in another
// keyed by the base58 identity. Allocation and close each run as a single
// TransactWriteItems call, so the deposit transfer and the account write
// succeed or fail together.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/tweetstore/store"
	"github.com/jacentio/tweetstore/tweet"
)

// API is the subset of the DynamoDB client used by Host.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Host implements store.Host on DynamoDB.
type Host struct {
	client API
	config Config
	logger *slog.Logger
}

// New creates a new Host.
func New(client API, config Config) *Host {
	config.validate()
	return &Host{
		client: client,
		config: config,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger for transaction diagnostics.
func (h *Host) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h.logger = logger
}

// accountItem is the stored form of a store.Account.
type accountItem struct {
	PK        string `dynamodbav:"pk"`
	Address   string `dynamodbav:"address"`
	Authority string `dynamodbav:"authority"`
	Lamports  uint64 `dynamodbav:"lamports"`
	Data      []byte `dynamodbav:"data"`
	CreatedAt string `dynamodbav:"created_at"`
}

func balanceKey(id tweet.Identity) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: id.String()},
	}
}

func accountKey(addr tweet.Address) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: addr.Key()},
	}
}

func lamportsValue(n uint64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatUint(n, 10)}
}

// Airdrop credits lamports to id, creating the balance if needed.
func (h *Host) Airdrop(ctx context.Context, id tweet.Identity, lamports uint64) error {
	_, err := h.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(h.config.BalanceTable),
		Key:                       balanceKey(id),
		UpdateExpression:          aws.String("ADD #lamports :amount"),
		ExpressionAttributeNames:  map[string]string{"#lamports": "lamports"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":amount": lamportsValue(lamports)},
	})
	return err
}

// Balance returns the lamports held by id. A missing balance is zero.
func (h *Host) Balance(ctx context.Context, id tweet.Identity) (uint64, error) {
	result, err := h.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(h.config.BalanceTable),
		Key:            balanceKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, err
	}
	if result.Item == nil {
		return 0, nil
	}
	var bal struct {
		Lamports uint64 `dynamodbav:"lamports"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &bal); err != nil {
		return 0, fmt.Errorf("unmarshal balance: %w", err)
	}
	return bal.Lamports, nil
}

// Allocate implements store.Host.
func (h *Host) Allocate(ctx context.Context, a store.Allocation) error {
	item, err := attributevalue.MarshalMap(accountItem{
		PK:        a.Address.Key(),
		Address:   a.Address.String(),
		Authority: a.Authority.String(),
		Lamports:  a.Lamports,
		Data:      a.Data,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}

	items := []types.TransactWriteItem{}

	// Track item indices for error mapping
	debitIndex := -1
	putIndex := -1

	// 1. Debit the payer
	if a.Lamports > 0 {
		debitIndex = len(items)
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:           aws.String(h.config.BalanceTable),
				Key:                 balanceKey(a.Payer),
				UpdateExpression:    aws.String("SET #lamports = #lamports - :deposit"),
				ConditionExpression: aws.String("#lamports >= :deposit"),
				ExpressionAttributeNames: map[string]string{
					"#lamports": "lamports",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":deposit": lamportsValue(a.Lamports),
				},
			},
		})
	}

	// 2. Create the account exactly once
	putIndex = len(items)
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(h.config.AccountTable),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(pk)"),
		},
	})

	_, err = h.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return h.mapAllocateTransactionError(err, debitIndex, putIndex)
}

// Close implements store.Host.
func (h *Host) Close(ctx context.Context, addr tweet.Address, authority tweet.Identity) (uint64, error) {
	acct, err := h.Load(ctx, addr)
	if err != nil {
		return 0, err
	}
	if acct.Authority != authority {
		return 0, store.ErrOwnerMismatch
	}

	items := []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName:           aws.String(h.config.AccountTable),
				Key:                 accountKey(addr),
				ConditionExpression: aws.String("#authority = :authority AND #lamports = :lamports"),
				ExpressionAttributeNames: map[string]string{
					"#authority": "authority",
					"#lamports":  "lamports",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":authority": &types.AttributeValueMemberS{Value: authority.String()},
					":lamports":  lamportsValue(acct.Lamports),
				},
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			},
		},
	}
	if acct.Lamports > 0 {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:        aws.String(h.config.BalanceTable),
				Key:              balanceKey(authority),
				UpdateExpression: aws.String("ADD #lamports :refund"),
				ExpressionAttributeNames: map[string]string{
					"#lamports": "lamports",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":refund": lamportsValue(acct.Lamports),
				},
			},
		})
	}

	_, err = h.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err := h.mapCloseTransactionError(err); err != nil {
		return 0, err
	}
	return acct.Lamports, nil
}

// Load implements store.Host.
func (h *Host) Load(ctx context.Context, addr tweet.Address) (*store.Account, error) {
	result, err := h.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(h.config.AccountTable),
		Key:            accountKey(addr),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, store.ErrAccountNotFound
	}
	return unmarshalAccount(result.Item)
}

// mapAllocateTransactionError maps DynamoDB transaction errors for Allocate.
// debitIndex is the index of the payer debit (-1 if none).
// putIndex is the index of the account put.
func (h *Host) mapAllocateTransactionError(err error, debitIndex, putIndex int) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				if i == putIndex {
					return store.ErrAccountInUse
				}
				if i == debitIndex {
					return store.ErrInsufficientFunds
				}
			}
		}
		h.logger.Warn("allocate transaction canceled", "error", err)
	}

	return err
}

// mapCloseTransactionError maps DynamoDB transaction errors for Close.
// The delete is always item 0; a condition failure that returns the old item
// means the account changed hands, no item means it is gone.
func (h *Host) mapCloseTransactionError(err error) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) && len(txErr.CancellationReasons) > 0 {
		reason := txErr.CancellationReasons[0]
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			if reason.Item == nil {
				return store.ErrAccountNotFound
			}
			return store.ErrOwnerMismatch
		}
		h.logger.Warn("close transaction canceled", "error", err)
	}

	return err
}

// unmarshalAccount converts a DynamoDB item to a store.Account.
func unmarshalAccount(raw map[string]types.AttributeValue) (*store.Account, error) {
	var item accountItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("unmarshal account: %w", err)
	}

	addr, err := tweet.ParseAddress(item.Address)
	if err != nil {
		return nil, fmt.Errorf("account address: %w", err)
	}
	authority, err := tweet.ParseIdentity(item.Authority)
	if err != nil {
		return nil, fmt.Errorf("account authority: %w", err)
	}

	return &store.Account{
		Address:   addr,
		Authority: authority,
		Lamports:  item.Lamports,
		Data:      item.Data,
	}, nil
}
