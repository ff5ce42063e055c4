package experiment

import "testing"

func TestExtractAnalysisID(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "query parameter",
			link: "https://experiments.example.com/dashboard?analysisId=3f2a9c10-77de-4b1a-9c55-0a1b2c3d4e5f&tab=metrics",
			want: "3f2a9c10-77de-4b1a-9c55-0a1b2c3d4e5f",
		},
		{
			name: "query parameter lowercase key",
			link: "https://experiments.example.com/dashboard?analysisid=ab12cd34-0000-1111-2222-333344445555",
			want: "ab12cd34-0000-1111-2222-333344445555",
		},
		{
			name: "path segment",
			link: "https://experiments.example.com/analysis/9e8d7c6b-5a49-3827-1605-f4e3d2c1b0a9/overview",
			want: "9e8d7c6b-5a49-3827-1605-f4e3d2c1b0a9",
		},
		{
			name: "query parameter wins over path",
			link: "https://experiments.example.com/analysis/11111111-1111-1111-1111-111111111111?analysisId=22222222-2222-2222-2222-222222222222",
			want: "22222222-2222-2222-2222-222222222222",
		},
		{
			name: "no id present",
			link: "https://experiments.example.com/dashboard?tab=metrics",
			want: "",
		},
		{
			name: "empty link",
			link: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractAnalysisID(tt.link); got != tt.want {
				t.Errorf("ExtractAnalysisID(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}
