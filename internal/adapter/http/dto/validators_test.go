package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeIDValidator(t *testing.T) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	// gin configures the shared engine with the "binding" tag name.
	type payload struct {
		Ref string `binding:"safe_id"`
	}

	valid := []string{"order-123", "ref_99", "a.b.c", "ABC"}
	for _, s := range valid {
		assert.NoError(t, v.Struct(payload{Ref: s}), s)
	}

	invalid := []string{"has space", "semi;colon", "<script>", "slash/ref", ""}
	for _, s := range invalid {
		assert.Error(t, v.Struct(payload{Ref: s}), s)
	}
}

func TestSanitizeStruct(t *testing.T) {
	ref := "  <b>ref</b>  "
	req := AdjustBalanceRequest{
		Amount:    " 25.00 ",
		Reason:    "  manual <adjustment>  ",
		Reference: &ref,
	}

	SanitizeStruct(&req)

	assert.Equal(t, "25.00", req.Amount)
	assert.Equal(t, "manual &lt;adjustment&gt;", req.Reason)
	require.NotNil(t, req.Reference)
	assert.Equal(t, "&lt;b&gt;ref&lt;/b&gt;", *req.Reference)
}

func TestSanitizeStruct_NonStruct(t *testing.T) {
	s := "unchanged"
	SanitizeStruct(&s)
	SanitizeStruct(nil)
	assert.Equal(t, "unchanged", s)
}
