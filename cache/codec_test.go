package cache

import (
	"testing"
	"time"
)

type cachedPage struct {
	Records []string
	Total   int
	At      time.Time
}

func TestCodecs_PreserveValues(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	in := cachedPage{Records: []string{"a", "b"}, Total: 2, At: at}

	for _, codec := range []Codec{MsgpackCodec{}, JSONCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Encode(in)
			if err != nil {
				t.Fatalf("unexpected encode error: %v", err)
			}
			var out cachedPage
			if err := codec.Decode(data, &out); err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if out.Total != 2 || len(out.Records) != 2 || out.Records[1] != "b" {
				t.Errorf("expected %+v but got: %+v", in, out)
			}
			if !out.At.Equal(at) {
				t.Errorf("expected time %v but got: %v", at, out.At)
			}
		})
	}
}

func TestCodecByName(t *testing.T) {
	if CodecByName("json").Name() != "json" {
		t.Errorf("expected json codec")
	}
	if CodecByName("").Name() != "msgpack" {
		t.Errorf("expected msgpack to be the default")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError bool
	}{
		{name: "defaults", cfg: DefaultConfig()},
		{name: "zero ttl", cfg: Config{DefaultTTL: 0}, wantError: true},
		{name: "negative timeout", cfg: Config{DefaultTTL: time.Second, OpTimeout: -1}, wantError: true},
		{name: "unknown codec", cfg: Config{DefaultTTL: time.Second, Codec: "gob"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantError && err == nil {
				t.Errorf("expected error but got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}
