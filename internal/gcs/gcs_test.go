package gcs

import "testing"

func TestSplitURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://exports/2024/cc_jan.csv", "exports", "2024/cc_jan.csv", false},
		{"gs://exports/file.csv", "exports", "file.csv", false},
		{"gs://exports", "", "", true},
		{"gs://exports/", "", "", true},
		{"/local/path.csv", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := splitURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("splitURI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestIsURI(t *testing.T) {
	if !IsURI("gs://bucket/object.csv") {
		t.Error("IsURI(gs://...) = false, want true")
	}
	if IsURI("data/cc_jan.csv") {
		t.Error("IsURI(local path) = true, want false")
	}
}
