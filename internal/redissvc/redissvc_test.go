package redissvc

import (
	"context"
	"testing"
)

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Options{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}
