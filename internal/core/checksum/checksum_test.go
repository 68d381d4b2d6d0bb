package checksum

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestMD5Calculation tests MD5 checksum computation
func TestMD5Calculation(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx := context.Background()

	// Test vector: "hello world"
	input := strings.NewReader("hello world")
	expected := "5eb63bbbe01eeed093cb22bb8f5acdc3" // Known MD5 of "hello world"

	result, err := calc.Calculate(ctx, input, MD5)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result != expected {
		t.Errorf("MD5 mismatch: got %s, want %s", result, expected)
	}
}

// TestSHA1Calculation tests SHA1 checksum computation
func TestSHA1Calculation(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx := context.Background()

	input := strings.NewReader("hello world")
	expected := "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed" // Known SHA1

	result, err := calc.Calculate(ctx, input, SHA1)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result != expected {
		t.Errorf("SHA1 mismatch: got %s, want %s", result, expected)
	}
}

// TestSHA256Calculation tests SHA256 checksum computation
func TestSHA256Calculation(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx := context.Background()

	input := strings.NewReader("hello world")
	expected := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" // Known SHA256

	result, err := calc.Calculate(ctx, input, SHA256)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result != expected {
		t.Errorf("SHA256 mismatch: got %s, want %s", result, expected)
	}
}

// TestEmptyInput tests checksum of empty content
func TestEmptyInput(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx := context.Background()

	expectedMD5 := "d41d8cd98f00b204e9800998ecf8427e" // MD5 of empty string

	result, err := calc.Calculate(ctx, strings.NewReader(""), MD5)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if result != expectedMD5 {
		t.Errorf("MD5 empty input mismatch: got %s, want %s", result, expectedMD5)
	}
}

// TestMaxSizeLimit tests that input exceeding MaxSize returns an error
func TestMaxSizeLimit(t *testing.T) {
	opts := Options{
		MaxSize:    10, // Only allow 10 bytes
		BufferSize: 4096,
	}
	calc := NewCalculator(opts)
	ctx := context.Background()

	input := strings.NewReader("this is a long string that exceeds 10 bytes")

	_, err := calc.Calculate(ctx, input, MD5)
	if err == nil {
		t.Fatal("Expected error for input exceeding MaxSize, got nil")
	}

	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("Expected 'exceeds maximum' error, got: %v", err)
	}
}

// TestContextCancellation tests that calculation respects context cancellation
func TestContextCancellation(t *testing.T) {
	calc := NewDefaultCalculator()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	input := strings.NewReader("some data")

	_, err := calc.Calculate(ctx, input, MD5)
	if err == nil {
		t.Fatal("Expected context cancellation error, got nil")
	}

	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

// TestUnsupportedAlgorithm tests error handling for unsupported algorithms
func TestUnsupportedAlgorithm(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx := context.Background()

	_, err := calc.Calculate(ctx, strings.NewReader("test"), Algorithm("crc32"))
	if err == nil {
		t.Fatal("Expected error for unsupported algorithm, got nil")
	}

	if !strings.Contains(err.Error(), "unsupported algorithm") {
		t.Errorf("Expected 'unsupported algorithm' error, got: %v", err)
	}
}

// TestIsSupported tests the IsSupported function
func TestIsSupported(t *testing.T) {
	tests := []struct {
		algo     Algorithm
		expected bool
	}{
		{MD5, true},
		{SHA1, true},
		{SHA256, true},
		{Algorithm("crc32"), false},
		{Algorithm(""), false},
	}

	for _, tt := range tests {
		result := IsSupported(tt.algo)
		if result != tt.expected {
			t.Errorf("IsSupported(%s) = %v, want %v", tt.algo, result, tt.expected)
		}
	}
}

// TestFile tests hashing a file on disk and that it matches the
// digest of the same bytes streamed directly
func TestFile(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "photo.jpg")
	content := []byte("not really a jpeg, but stable bytes")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	fromFile, err := File(ctx, calc, path, MD5)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	fromReader, err := calc.Calculate(ctx, strings.NewReader(string(content)), MD5)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if fromFile != fromReader {
		t.Errorf("file digest %s != reader digest %s", fromFile, fromReader)
	}
}

// TestFileMissing tests the error path for a nonexistent file
func TestFileMissing(t *testing.T) {
	calc := NewDefaultCalculator()

	_, err := File(context.Background(), calc, filepath.Join(t.TempDir(), "nope.bin"), MD5)
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
}

// TestDeterminism tests that repeated hashing of the same content
// yields identical digests
func TestDeterminism(t *testing.T) {
	calc := NewDefaultCalculator()
	ctx := context.Background()

	content := strings.Repeat("holiday photos ", 4096)

	first, err := calc.Calculate(ctx, strings.NewReader(content), MD5)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	second, err := calc.Calculate(ctx, strings.NewReader(content), MD5)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if first != second {
		t.Errorf("digests differ across runs: %s vs %s", first, second)
	}
}
