package compression

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestZstdRoundTrip(t *testing.T) {
	var c Compressor = ZstdCompressor{}

	testCases := map[string][]byte{
		"empty":      {},
		"short text": []byte("Hello World"),
		"long text":  []byte(strings.Repeat("A blog post body that repeats. ", 500)),
	}

	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			compressed, err := c.Compress(data)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}

			got, err := c.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Round trip mismatch: got %d bytes, want %d", len(got), len(data))
			}
		})
	}
}

func TestZstdCompressesRepetitiveContent(t *testing.T) {
	data := []byte(strings.Repeat("lorem ipsum ", 1000))

	compressed, err := ZstdCompressor{}.Compress(data)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if len(compressed) >= len(data)/10 {
		t.Errorf("Expected strong compression, got %d bytes from %d", len(compressed), len(data))
	}
}

func TestZstdDecompressGarbage(t *testing.T) {
	if _, err := (ZstdCompressor{}).Decompress([]byte("not zstd")); err == nil {
		t.Error("Expected error decompressing invalid data")
	}
}

func TestZstdConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := []byte(strings.Repeat(string(rune('a'+i)), 256))
			c := ZstdCompressor{}
			compressed, err := c.Compress(data)
			if err != nil {
				t.Errorf("Compress failed: %v", err)
				return
			}
			got, err := c.Decompress(compressed)
			if err != nil || !bytes.Equal(got, data) {
				t.Errorf("Concurrent round trip failed: %v", err)
			}
		}(i)
	}
	wg.Wait()
}
