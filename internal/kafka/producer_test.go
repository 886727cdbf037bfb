package kafka_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	kafkax "github.com/graciacafe/cafe-orders/internal/kafka"
)

// Close() dan cancel() balapan di select goroutine producer; urutan apa
// pun tidak boleh panic (double close) dan WaitClosed harus kembali.
func TestProducer_CloseThenCancel(t *testing.T) {
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := kafkax.NewProducer([]string{"127.0.0.1:9092"}, "test.topic", 8)
		p.Start(ctx)

		p.Close()
		cancel()
		p.WaitClosed()
	}
}

func TestProducer_CancelThenClose(t *testing.T) {
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := kafkax.NewProducer([]string{"127.0.0.1:9092"}, "test.topic", 8)
		p.Start(ctx)

		cancel()
		p.Close()
		p.WaitClosed()
	}
}

func TestProducer_CloseIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := kafkax.NewProducer([]string{"127.0.0.1:9092"}, "test.topic", 8)
	p.Start(ctx)

	p.Close()
	assert.NotPanics(t, p.Close)
	p.WaitClosed()
}
