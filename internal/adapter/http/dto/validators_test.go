package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Username: "  alice  ",
		Email:    " alice@example.com ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "alice@example.com", req.Email)
}

func TestSanitizeStruct_SkipsPasswords(t *testing.T) {
	req := LoginRequest{Username: "alice", Password: " p<a>ss&word "}
	SanitizeStruct(&req)

	assert.Equal(t, " p<a>ss&word ", req.Password)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	first := "<script>alert('x')</script>"
	req := UpdateProfileRequest{FirstName: &first}
	SanitizeStruct(&req)

	assert.Contains(t, *req.FirstName, "&lt;script&gt;")
	assert.NotContains(t, *req.FirstName, "<script>")
}

func TestSanitizeStruct_TrimOnlyFieldsKeepMarkup(t *testing.T) {
	reg := RegisterRequest{Username: "alice", Email: " a&b@x.com "}
	SanitizeStruct(&reg)
	assert.Equal(t, "a&b@x.com", reg.Email)

	admin := RegisterAdminRequest{Email: "o'brien@x.com"}
	SanitizeStruct(&admin)
	assert.Equal(t, "o'brien@x.com", admin.Email)

	block := BlockRequest{Reason: "  fraud & chargebacks  "}
	SanitizeStruct(&block)
	assert.Equal(t, "fraud & chargebacks", block.Reason)

	send := SendCryptoRequest{Note: "refund <ticket 42>"}
	SanitizeStruct(&send)
	assert.Equal(t, "refund <ticket 42>", send.Note)

	review := ReviewKYCRequest{Notes: "name & photo match"}
	SanitizeStruct(&review)
	assert.Equal(t, "name & photo match", review.Notes)
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	first := "  Alice  "
	req := UpdateProfileRequest{FirstName: &first}
	SanitizeStruct(&req)

	assert.Equal(t, "Alice", *req.FirstName)
	assert.Nil(t, req.LastName)
}

func TestSanitizeStruct_WalksEmbeddedStructs(t *testing.T) {
	q := UserListQuery{PageQuery: PageQuery{Page: 2}, Search: "  ali "}
	SanitizeStruct(&q)

	assert.Equal(t, "ali", q.Search)
	assert.Equal(t, 2, q.Page)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID(t *testing.T) {
	valid := []string{"alice", "REF_002", "a.b.c", "ABC-def_GHI.123"}
	for _, tc := range valid {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
	invalid := []string{
		"al ice",  // space
		"al<ice>", // angle brackets
		"a;DROP",  // semicolon
		"",        // empty
		"ali\nce", // newline
	}
	for _, tc := range invalid {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestDecimalAmount(t *testing.T) {
	tests := []struct {
		amount string
		ok     bool
	}{
		{"1", true},
		{"0.00000001", true},
		{"12.5", true},
		{"0", false},
		{"-1", false},
		{"1e3", false},
		{"abc", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			req := SendRequest{Currency: "BTC", Amount: tt.amount, ToAddress: "0xabc"}
			err := binding.Validator.ValidateStruct(&req)
			assert.Equal(t, tt.ok, err == nil, "amount %q: %v", tt.amount, err)
		})
	}
}

func TestSafeURL(t *testing.T) {
	good := "https://cdn.example.com/front.png"
	bad := "javascript:alert(1)"

	assert.NoError(t, binding.Validator.ValidateStruct(&UpdateProfileRequest{ProfileImage: &good}))
	assert.Error(t, binding.Validator.ValidateStruct(&UpdateProfileRequest{ProfileImage: &bad}))
}

func TestPageQuery_Params(t *testing.T) {
	p := PageQuery{}.Params()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)

	p = PageQuery{Page: 3, PerPage: 500}.Params()
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.PerPage)
}
