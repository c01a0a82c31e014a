package serial

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyS3")
	if cfg.Device != "/dev/ttyS3" || cfg.Baud != 115200 || cfg.ReadTimeout != 0 {
		t.Errorf("Unexpected default config: %+v", cfg)
	}
}

func TestOpenValidates(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if _, err := Open(&Config{Baud: 9600}); err == nil {
		t.Error("Expected error for empty device")
	}
}
