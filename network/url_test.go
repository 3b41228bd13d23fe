package network

import "testing"

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		ref     string
		want    string
		wantErr bool
	}{
		{
			name: "absolute URL unchanged",
			base: "http://example.com/page.css",
			ref:  "https://other.com/resource.css",
			want: "https://other.com/resource.css",
		},
		{
			name: "relative path",
			base: "http://example.com/dir/page.css",
			ref:  "style.css",
			want: "http://example.com/dir/style.css",
		},
		{
			name: "relative path with dots",
			base: "http://example.com/dir/sub/page.css",
			ref:  "../style.css",
			want: "http://example.com/dir/style.css",
		},
		{
			name: "absolute path",
			base: "http://example.com/dir/page.css",
			ref:  "/css/style.css",
			want: "http://example.com/css/style.css",
		},
		{
			name: "fragment only",
			base: "http://example.com/sprite.svg",
			ref:  "#icon",
			want: "http://example.com/sprite.svg#icon",
		},
		{
			name: "data URL unchanged",
			base: "http://example.com/page.css",
			ref:  "data:text/css,body{color:red}",
			want: "data:text/css,body{color:red}",
		},
		{
			name: "empty reference returns base",
			base: "http://example.com/page.css",
			ref:  "",
			want: "http://example.com/page.css",
		},
		{
			name: "protocol-relative URL",
			base: "https://example.com/page.css",
			ref:  "//cdn.example.com/reset.css",
			want: "https://cdn.example.com/reset.css",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveURL(tt.base, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Errorf("ResolveURL() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ResolveURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAbsoluteURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.com", true},
		{"https://example.com/path", true},
		{"file:///tmp/a.css", true},
		{"/path/to/file.css", false},
		{"../relative/path.css", false},
		{"style.css", false},
		{"data:text/css,body{color:red}", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsAbsoluteURL(tt.url); got != tt.want {
				t.Errorf("IsAbsoluteURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsDataURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"data:text/css,body{color:red}", true},
		{"DATA:text/plain,hello", true},
		{"http://example.com/style.css", false},
		{"style.css", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsDataURL(tt.url); got != tt.want {
				t.Errorf("IsDataURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
