package newsletter

import (
	"context"
	"reflect"
	"testing"

	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/upstream"
)

type stubDoer struct {
	err  error
	reqs []upstream.Request
}

func (s *stubDoer) Do(_ context.Context, req upstream.Request) ([]byte, error) {
	s.reqs = append(s.reqs, req)
	return []byte(`{}`), s.err
}

func newTestService(t *testing.T, doer *stubDoer) Service {
	t.Helper()
	svc, err := NewService(doer, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSubscribeNormalizesEmail(t *testing.T) {
	t.Parallel()
	doer := &stubDoer{}
	svc := newTestService(t, doer)

	res, err := svc.Subscribe(context.Background(), "  Jin@Example.COM ")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if res.Email != "jin@example.com" || res.AlreadySubscribed {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(doer.reqs) != 1 {
		t.Fatalf("expected one upstream call, got %d", len(doer.reqs))
	}
	if doer.reqs[0].Path != "/newsletter/subscribe" {
		t.Fatalf("unexpected path %q", doer.reqs[0].Path)
	}
	if want := map[string]string{"email": "jin@example.com"}; !reflect.DeepEqual(doer.reqs[0].Body, want) {
		t.Fatalf("unexpected body %#v", doer.reqs[0].Body)
	}
}

func TestSubscribeConflictIsSuccess(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, &stubDoer{err: pkgerrors.New(pkgerrors.CodeConflict, "already subscribed")})

	res, err := svc.Subscribe(context.Background(), "jin@example.com")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !res.AlreadySubscribed {
		t.Fatalf("expected already subscribed")
	}
}

func TestSubscribeRejectsInvalidEmailWithoutCalling(t *testing.T) {
	t.Parallel()
	doer := &stubDoer{}
	svc := newTestService(t, doer)

	for _, email := range []string{"", "   ", "nope", "Name <a@b.com>", "a@@b.com", "@example.com"} {
		if _, err := svc.Subscribe(context.Background(), email); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%q: expected validation error, got %v", email, err)
		}
	}
	if len(doer.reqs) != 0 {
		t.Fatalf("invalid addresses reached upstream: %d calls", len(doer.reqs))
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Jin@Example.com", want: "jin@example.com"},
		{in: " shop+kbeauty@mail.example.co.kr ", want: "shop+kbeauty@mail.example.co.kr"},
		{in: "missing-at.example.com", wantErr: true},
		{in: "jin@", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeEmail(tc.in)
		if tc.wantErr {
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("%q: expected validation error, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestSubscribePropagatesUpstreamFailure(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, &stubDoer{err: pkgerrors.New(pkgerrors.CodeDependency, "down")})
	if _, err := svc.Subscribe(context.Background(), "jin@example.com"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestHashEmailIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	if HashEmail("A@B.com") != HashEmail(" a@b.com") {
		t.Fatalf("hash should ignore case and surrounding space")
	}
	if got := len(HashEmail("a@b.com")); got != 64 {
		t.Fatalf("expected hex sha256, got %d chars", got)
	}
}
