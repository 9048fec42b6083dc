package queue

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestRetryCountHeaderWidths(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"nil headers", nil, 0},
		{"missing header", amqp.Table{}, 0},
		{"int32", amqp.Table{retryCountHeader: int32(2)}, 2},
		{"int64", amqp.Table{retryCountHeader: int64(3)}, 3},
		{"int", amqp.Table{retryCountHeader: 4}, 4},
		{"unexpected type", amqp.Table{retryCountHeader: "5"}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := retryCount(tc.headers); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
