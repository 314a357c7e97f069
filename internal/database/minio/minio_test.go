package minio

import "testing"

func TestParseRef(t *testing.T) {
	testCases := []struct {
		ref            string
		expectedBucket string
		expectedObject string
		wantErr        bool
	}{
		{"minio://decks/q3/board.md", "decks", "q3/board.md", false},
		{"board.md", "documents", "board.md", false},
		{"/nested/board.md", "documents", "nested/board.md", false},
		{"minio://decks", "", "", true},
		{"minio:///board.md", "", "", true},
		{"../etc/passwd", "", "", true},
		{"", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.ref, func(t *testing.T) {
			bucket, object, err := ParseRef(tc.ref, "documents")
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected %q to be rejected", tc.ref)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if bucket != tc.expectedBucket || object != tc.expectedObject {
				t.Errorf("Expected %s/%s, got %s/%s", tc.expectedBucket, tc.expectedObject, bucket, object)
			}
		})
	}
}
