package models

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Kind
	}{
		{"lowercase html", "<html><body></body></html>", KindHTML},
		{"uppercase html", "<!DOCTYPE html><HTML lang=\"en\">", KindHTML},
		{"xml urlset", `<?xml version="1.0"?><urlset></urlset>`, KindXML},
		{"empty", "", KindXML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.content); got != tt.want {
				t.Fatalf("Classify(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestKindExtensionAndParse(t *testing.T) {
	if KindXML.Extension() != "xml" || KindHTML.Extension() != "html" {
		t.Fatalf("unexpected extensions: %q %q", KindXML.Extension(), KindHTML.Extension())
	}
	for _, k := range []Kind{KindXML, KindHTML, KindUnrecognized} {
		if got := ParseKind(k.String()); got != k {
			t.Fatalf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
}
