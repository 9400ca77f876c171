package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minios-linux/mmdl10n/modulemd"
	"github.com/minios-linux/mmdl10n/zanata"
)

type fakePublisher struct{ err error }

func (f fakePublisher) Publish(context.Context, zanata.PublishRequest) error { return f.err }

func TestPublishExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"put-version failure", &zanata.PublishError{Step: zanata.StepPutVersion, ExitCode: 1}, 1},
		{"push failure", &zanata.PublishError{Step: zanata.StepPush, ExitCode: 1}, 2},
		{"runner failure", errors.New("zanata-cli not found"), 1},
	}

	for _, tc := range tests {
		err := publish(context.Background(), fakePublisher{err: tc.err}, zanata.PublishRequest{})
		var ee *exitError
		if !errors.As(err, &ee) {
			t.Fatalf("%s: error %v is not an exitError", tc.name, err)
		}
		if ee.code != tc.code {
			t.Fatalf("%s: exit code = %d, want %d", tc.name, ee.code, tc.code)
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%s: original error not wrapped", tc.name)
		}
	}

	if err := publish(context.Background(), fakePublisher{}, zanata.PublishRequest{}); err != nil {
		t.Fatalf("successful publish returned %v", err)
	}
}

func TestRootFlagsMatchConfigKeys(t *testing.T) {
	root := newRootCmd()
	for name := range flagKeys {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Fatalf("flag --%s is bound to config but not defined", name)
		}
	}
	for _, short := range []string{"k", "b", "z", "p", "f", "c"} {
		if root.PersistentFlags().ShorthandLookup(short) == nil {
			t.Fatalf("shorthand -%s missing", short)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "mmdl10n version dev") {
		t.Fatalf("version output = %q", out.String())
	}
}

func TestGenerateFromLocalCatalogs(t *testing.T) {
	dir := t.TempDir()
	po := `msgid ""
msgstr ""
"Language: de\n"

#: foo;s1;summary:1
msgid "Foo summary"
msgstr "Foo Zusammenfassung"

#: foo;s1;description:2
msgid "Foo desc"
msgstr "Foo Beschreibung"

#: foo;s1;profile;default:3
msgid "Default install"
msgstr "Standardinstallation"
`
	if err := os.WriteFile(filepath.Join(dir, "de.po"), []byte(po), 0644); err != nil {
		t.Fatal(err)
	}
	yamlFile := filepath.Join(dir, "out.yaml")

	root := newRootCmd()
	root.SetArgs([]string{"generate-metadata", "--pofile-dir", dir, "--yaml-file", yamlFile, "--branch", "f31"})
	if err := root.Execute(); err != nil {
		t.Fatalf("generate-metadata: %v", err)
	}

	f, err := os.Open(yamlFile)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	defer f.Close()
	translations, err := modulemd.LoadTranslations(f)
	if err != nil {
		t.Fatalf("LoadTranslations: %v", err)
	}
	if len(translations) != 1 {
		t.Fatalf("got %d translations, want 1", len(translations))
	}
	e := translations[0].Entry("de")
	if e == nil || e.ProfileDescriptions["default"] != "Standardinstallation" {
		t.Fatalf("de entry = %#v", e)
	}

	out := renderTranslations(translations)
	for _, want := range []string{"MODULE", "foo", "s1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show table missing %q:\n%s", want, out)
		}
	}
}

func TestLocaleStats(t *testing.T) {
	rows := localeStats([]zanata.LocaleStats{{Locale: "de", Translated: 3, Total: 4}})
	if len(rows) != 1 || rows[0].Name != "Deutsch" || rows[0].Percent() != 75 {
		t.Fatalf("rows = %+v", rows)
	}
}
