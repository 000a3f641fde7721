package dynamo

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI is an in-memory API that understands the exact expressions Host sends.
type fakeAPI struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// transactCalls counts TransactWriteItems invocations.
	transactCalls int

	// beforeTransact runs under no lock before each transaction is evaluated.
	beforeTransact func()
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{tables: make(map[string]map[string]map[string]types.AttributeValue)}
}

func (f *fakeAPI) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.tables[name]
	if !ok {
		t = make(map[string]map[string]types.AttributeValue)
		f.tables[name] = t
	}
	return t
}

func pkOf(key map[string]types.AttributeValue) string {
	return key["pk"].(*types.AttributeValueMemberS).Value
}

func numOf(av types.AttributeValue) uint64 {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	v, _ := strconv.ParseUint(n.Value, 10, 64)
	return v
}

func strOf(av types.AttributeValue) string {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return s.Value
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.table(aws.ToString(in.TableName))[pkOf(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.applyAdd(aws.ToString(in.TableName), in.Key, in.ExpressionAttributeValues)
	return &dynamodb.UpdateItemOutput{}, nil
}

// applyAdd handles "ADD #lamports :x".
func (f *fakeAPI) applyAdd(table string, key, values map[string]types.AttributeValue) {
	var amount uint64
	for _, v := range values {
		amount = numOf(v)
	}
	t := f.table(table)
	pk := pkOf(key)
	item, ok := t[pk]
	if !ok {
		item = copyItem(key)
	}
	item["lamports"] = lamportsValue(numOf(item["lamports"]) + amount)
	t[pk] = item
}

func (f *fakeAPI) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if f.beforeTransact != nil {
		f.beforeTransact()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactCalls++

	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, ti := range in.TransactItems {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
		ok, old := f.check(ti)
		if !ok {
			failed = true
			reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed"), Item: old}
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, ti := range in.TransactItems {
		f.apply(ti)
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

// check evaluates the condition of one transaction item. On failure it
// returns the old item when ALL_OLD was requested.
func (f *fakeAPI) check(ti types.TransactWriteItem) (bool, map[string]types.AttributeValue) {
	switch {
	case ti.Put != nil:
		_, exists := f.table(aws.ToString(ti.Put.TableName))[pkOf(ti.Put.Item)]
		return !exists, nil

	case ti.Update != nil:
		if ti.Update.ConditionExpression == nil {
			return true, nil
		}
		item, exists := f.table(aws.ToString(ti.Update.TableName))[pkOf(ti.Update.Key)]
		if !exists {
			return false, nil
		}
		_, hasLamports := item["lamports"]
		deposit := numOf(ti.Update.ExpressionAttributeValues[":deposit"])
		return hasLamports && numOf(item["lamports"]) >= deposit, nil

	case ti.Delete != nil:
		item, exists := f.table(aws.ToString(ti.Delete.TableName))[pkOf(ti.Delete.Key)]
		if !exists {
			return false, nil
		}
		vals := ti.Delete.ExpressionAttributeValues
		if strOf(item["authority"]) == strOf(vals[":authority"]) && numOf(item["lamports"]) == numOf(vals[":lamports"]) {
			return true, nil
		}
		if ti.Delete.ReturnValuesOnConditionCheckFailure == types.ReturnValuesOnConditionCheckFailureAllOld {
			return false, copyItem(item)
		}
		return false, nil
	}
	return true, nil
}

func (f *fakeAPI) apply(ti types.TransactWriteItem) {
	switch {
	case ti.Put != nil:
		f.table(aws.ToString(ti.Put.TableName))[pkOf(ti.Put.Item)] = copyItem(ti.Put.Item)

	case ti.Update != nil:
		expr := aws.ToString(ti.Update.UpdateExpression)
		if strings.HasPrefix(expr, "ADD") {
			f.applyAdd(aws.ToString(ti.Update.TableName), ti.Update.Key, ti.Update.ExpressionAttributeValues)
			return
		}
		t := f.table(aws.ToString(ti.Update.TableName))
		pk := pkOf(ti.Update.Key)
		item := t[pk]
		deposit := numOf(ti.Update.ExpressionAttributeValues[":deposit"])
		item["lamports"] = lamportsValue(numOf(item["lamports"]) - deposit)

	case ti.Delete != nil:
		delete(f.table(aws.ToString(ti.Delete.TableName)), pkOf(ti.Delete.Key))
	}
}

// put stores a raw item, bypassing conditions.
func (f *fakeAPI) put(table string, item map[string]types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.table(table)[pkOf(item)] = copyItem(item)
}
