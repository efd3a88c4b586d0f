package service_test

import (
	"testing"

	"github.com/msomdec/contacts-api/internal/service"
)

func TestGravatarURL(t *testing.T) {
	// md5("myemailaddress@example.com") from the Gravatar documentation.
	want := "https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346"

	if got := service.GravatarURL("MyEmailAddress@example.com "); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
