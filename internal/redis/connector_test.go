package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/kompas/internal/logger"
)

func testOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		DialTimeout:    100 * time.Millisecond,
		ReadTimeout:    100 * time.Millisecond,
		WriteTimeout:   100 * time.Millisecond,
		PoolSize:       2,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  20 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), testOptions(mr.Addr()), logger.New("error", false))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestConnectRetriesUntilRedisComesUp(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	addr := mr.Addr()
	mr.Close()

	restarted := make(chan struct{})
	go func() {
		defer close(restarted)
		time.Sleep(60 * time.Millisecond)
		_ = mr.Restart()
	}()
	defer func() {
		<-restarted
		mr.Close()
	}()

	opts := testOptions(addr)
	opts.ConnectTimeout = 2 * time.Second

	client, err := Connect(context.Background(), opts, logger.New("error", false))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	_ = client.Close()
}

func TestConnectFailsAfterTimeout(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	addr := mr.Addr()
	mr.Close()

	start := time.Now()
	_, err = Connect(context.Background(), testOptions(addr), logger.New("error", false))
	if err == nil {
		t.Fatal("Connect() error = nil with redis down")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Connect() took %v, want about ConnectTimeout", elapsed)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *ConnectOptions)
		wantErr bool
	}{
		{"valid", func(o *ConnectOptions) {}, false},
		{"missing addr", func(o *ConnectOptions) { o.Addr = "" }, true},
		{"zero connect timeout", func(o *ConnectOptions) { o.ConnectTimeout = 0 }, true},
		{"zero retry interval", func(o *ConnectOptions) { o.RetryInterval = 0 }, true},
		{"zero max wait", func(o *ConnectOptions) { o.MaxWait = 0 }, true},
		{"zero ping timeout", func(o *ConnectOptions) { o.PingTimeout = 0 }, true},
		{"negative warn threshold", func(o *ConnectOptions) { o.WarnThreshold = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions("localhost:6379")
			tt.mutate(&opts)
			if err := opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
