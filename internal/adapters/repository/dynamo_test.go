package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/okian/pickpool/internal/adapters/repository"
	"github.com/okian/pickpool/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeBatchWriter struct {
	inputs []*dynamodb.BatchWriteItemInput
	// reject returns the requests to report unprocessed.
	reject func(reqs []types.WriteRequest) []types.WriteRequest
	err    error
}

func (f *fakeBatchWriter) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	out := &dynamodb.BatchWriteItemOutput{}
	if f.reject == nil {
		return out, nil
	}
	for table, reqs := range in.RequestItems {
		if rejected := f.reject(reqs); len(rejected) > 0 {
			out.UnprocessedItems = map[string][]types.WriteRequest{table: rejected}
		}
	}
	return out, nil
}

func userItems() []repository.Item {
	created := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	users := []model.User{
		{UserID: "ds-user-1", Username: "SharpModel", Email: "sharpmodel@example.com", CreatedAt: created},
		{UserID: "ds-user-2", Username: "SolidModel", Email: "solidmodel@example.com", CreatedAt: created},
		{UserID: "ds-user-3", Username: "CoinFlip", Email: "coinflip@example.com", CreatedAt: created},
	}
	items := make([]repository.Item, len(users))
	for i, u := range users {
		items[i] = repository.Item{Key: u.Key(), Value: u}
	}
	return items
}

func TestDynamoStore_BatchUpsert(t *testing.T) {
	ctx := context.Background()

	Convey("Given a dynamo store over a fake client", t, func() {
		fake := &fakeBatchWriter{}
		store := repository.NewDynamoStoreWithClient(fake)

		Convey("When every item is accepted", func() {
			unprocessed, err := store.BatchUpsert(ctx, "mlb-prediction-pool-users", userItems())

			Convey("Then one put request per item should target the partition table", func() {
				So(err, ShouldBeNil)
				So(unprocessed, ShouldBeEmpty)
				So(fake.inputs, ShouldHaveLength, 1)
				reqs := fake.inputs[0].RequestItems["mlb-prediction-pool-users"]
				So(reqs, ShouldHaveLength, 3)

				var u model.User
				So(attributevalue.UnmarshalMap(reqs[1].PutRequest.Item, &u), ShouldBeNil)
				So(u.UserID, ShouldEqual, "ds-user-2")
				So(reqs[1].PutRequest.Item, ShouldContainKey, "createdAt")
			})
		})

		Convey("When the client reports some items unprocessed", func() {
			fake.reject = func(reqs []types.WriteRequest) []types.WriteRequest {
				return []types.WriteRequest{reqs[2], reqs[0]}
			}
			items := userItems()
			unprocessed, err := store.BatchUpsert(ctx, "users", items)

			Convey("Then they should map back to the original items in request order", func() {
				So(err, ShouldBeNil)
				So(unprocessed, ShouldHaveLength, 2)
				So(unprocessed[0].Key, ShouldEqual, "ds-user-1")
				So(unprocessed[1].Key, ShouldEqual, "ds-user-3")
			})
		})

		Convey("When the client echoes an unprocessed item that differs from what was sent", func() {
			fake.reject = func(reqs []types.WriteRequest) []types.WriteRequest {
				altered := make(map[string]types.AttributeValue, len(reqs[1].PutRequest.Item))
				for k, v := range reqs[1].PutRequest.Item {
					if k != "email" {
						altered[k] = v
					}
				}
				return []types.WriteRequest{reqs[0], {PutRequest: &types.PutRequest{Item: altered}}}
			}
			unprocessed, err := store.BatchUpsert(ctx, "users", userItems())

			Convey("Then the batch should fail instead of counting the item as written", func() {
				So(errors.Is(err, repository.ErrUnmatchedUnprocessed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "users: 1 of 2")
				So(unprocessed, ShouldBeEmpty)
			})
		})

		Convey("When an unprocessed entry carries no put request", func() {
			fake.reject = func([]types.WriteRequest) []types.WriteRequest {
				return []types.WriteRequest{{DeleteRequest: &types.DeleteRequest{}}}
			}
			_, err := store.BatchUpsert(ctx, "users", userItems())

			Convey("Then it should be reported as unmatched", func() {
				So(errors.Is(err, repository.ErrUnmatchedUnprocessed), ShouldBeTrue)
			})
		})

		Convey("When the client fails", func() {
			fake.err = errors.New("connection refused")
			_, err := store.BatchUpsert(ctx, "users", userItems())

			Convey("Then the error should be returned with the partition", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "batch write users")
			})
		})

		Convey("When the batch is too large", func() {
			_, err := store.BatchUpsert(ctx, "users", makeItems(26))

			Convey("Then no request should be sent", func() {
				So(errors.Is(err, repository.ErrBatchTooLarge), ShouldBeTrue)
				So(fake.inputs, ShouldBeEmpty)
			})
		})

		Convey("When a value cannot be marshaled", func() {
			_, err := store.BatchUpsert(ctx, "users", []repository.Item{{Key: "bad", Value: make(chan int)}})

			Convey("Then it should fail before sending", func() {
				So(errors.Is(err, repository.ErrMarshalItem), ShouldBeTrue)
				So(fake.inputs, ShouldBeEmpty)
			})
		})

		Convey("When the batch is empty", func() {
			unprocessed, err := store.BatchUpsert(ctx, "users", nil)

			Convey("Then nothing should be sent", func() {
				So(err, ShouldBeNil)
				So(unprocessed, ShouldBeEmpty)
				So(fake.inputs, ShouldBeEmpty)
			})
		})
	})
}
