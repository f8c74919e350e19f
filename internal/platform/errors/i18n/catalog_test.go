package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if got := GetCatalog(""); got != base {
		t.Fatal("expected empty locale to resolve to en-US")
	}
	if got := GetCatalog("not a locale"); got != base {
		t.Fatal("expected unparseable locale to fall back to en-US")
	}
}

func TestGetCatalogMatchesRegionalVariant(t *testing.T) {
	if got := GetCatalog("pt").Locale(); got != "pt-BR" {
		t.Fatalf("locale = %q, want pt-BR", got)
	}
}

func TestResolveAcceptLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: BaseLocale},
		{header: "pt-BR,pt;q=0.9,en;q=0.8", want: "pt-BR"},
		{header: "en-GB,en;q=0.9", want: BaseLocale},
		{header: "de-DE", want: BaseLocale},
	}
	for _, tc := range tests {
		if got := ResolveAcceptLanguage(tc.header); got != tc.want {
			t.Errorf("ResolveAcceptLanguage(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "hello {{.Name}}",
	})

	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if cat.Format("code", nil) != "hello <no value>" {
		t.Fatal("expected template to render missing metadata")
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "{{ if .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ if .Name }}" {
		t.Fatal("expected template fallback on parse error")
	}
}

func TestBuiltInCatalogsRenderMetadata(t *testing.T) {
	got := GetCatalog("en-US").Format(CodeAssignmentInvalidStage, map[string]string{"Stage": "BOGUS"})
	if got != "Review stage BOGUS is not supported." {
		t.Fatalf("message = %q", got)
	}
	for code := range enUSMessages {
		if _, ok := ptBRMessages[code]; !ok {
			t.Errorf("pt-BR catalog missing %s", code)
		}
	}
}

func TestRegisterCatalog(t *testing.T) {
	custom := NewCatalog("custom", map[Code]string{"code": "ok"})
	RegisterCatalog("custom", custom)
	if got := GetCatalog("custom"); got != custom {
		t.Fatal("expected registered catalog")
	}
}
