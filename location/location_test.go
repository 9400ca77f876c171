package location

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Location{
		{Module: "nodejs", Stream: "12", Kind: KindSummary},
		{Module: "nodejs", Stream: "12", Kind: KindDescription},
		{Module: "nodejs", Stream: "12", Kind: KindProfile, Profile: "default"},
		{Module: "perl", Stream: "5.30", Kind: KindProfile, Profile: "minimal"},
		{Module: "", Stream: "", Kind: KindSummary},
	}
	for _, want := range cases {
		token := want.String()
		got, err := Decode(token)
		if err != nil {
			t.Fatalf("Decode(%q) error: %v", token, err)
		}
		if got != want {
			t.Fatalf("Decode(Encode(%#v)) = %#v", want, got)
		}
	}
}

func TestEncodeFormat(t *testing.T) {
	if got := Encode("foo", "s1", KindSummary, "ignored"); got != "foo;s1;summary" {
		t.Fatalf("Encode(summary) = %q", got)
	}
	if got := Encode("foo", "s1", KindProfile, "default"); got != "foo;s1;profile;default" {
		t.Fatalf("Encode(profile) = %q", got)
	}
}

func TestDecodeRejectsBadPartCounts(t *testing.T) {
	for _, token := range []string{"onlytwo;parts", "single", "a;b;c;d;e;f", "m;s;profile;p;x;y"} {
		_, err := Decode(token)
		if err == nil {
			t.Fatalf("Decode(%q) should fail", token)
		}
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("Decode(%q) error %v is not ErrMalformed", token, err)
		}
		var me *MalformedError
		if !errors.As(err, &me) || me.Token != token {
			t.Fatalf("Decode(%q) error = %#v", token, err)
		}
	}
}

func TestDecodeFivePartProfile(t *testing.T) {
	loc, err := Decode("m;s;profile;default;extra")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := Location{Module: "m", Stream: "s", Kind: KindProfile, Profile: "default"}
	if loc != want {
		t.Fatalf("Decode = %#v, want %#v", loc, want)
	}
}

func TestDecodeProfileOnlyForProfileKind(t *testing.T) {
	loc, err := Decode("foo;s1;summary;extra")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if loc.Profile != "" {
		t.Fatalf("Profile = %q, want empty for summary kind", loc.Profile)
	}

	loc, err = Decode("foo;s1;profile")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if loc.Kind != KindProfile || loc.Profile != "" {
		t.Fatalf("Decode(profile without name) = %#v", loc)
	}

	loc, err = Decode("foo;s1;bogus")
	if err != nil {
		t.Fatalf("unknown kinds must decode: %v", err)
	}
	if loc.Kind != "bogus" {
		t.Fatalf("Kind = %q", loc.Kind)
	}
}

func TestKindLine(t *testing.T) {
	if KindSummary.Line() != 1 || KindDescription.Line() != 2 || KindProfile.Line() != 3 {
		t.Fatal("unexpected line numbers")
	}
	if Kind("other").Line() != 0 {
		t.Fatal("unknown kind should map to 0")
	}
}
