package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ParseInt(t *testing.T) {
	require.Equal(t, 10, ParseInt("", 10))
	require.Equal(t, 10, ParseInt("abc", 10))
	require.Equal(t, 10, ParseInt("0", 10))
	require.Equal(t, 10, ParseInt("-3", 10))
	require.Equal(t, 25, ParseInt("25", 10))
}

func Test_ParseBool(t *testing.T) {
	require.Nil(t, ParseBool(""))
	require.Nil(t, ParseBool("maybe"))

	yes := ParseBool("true")
	require.NotNil(t, yes)
	require.True(t, *yes)

	no := ParseBool("false")
	require.NotNil(t, no)
	require.False(t, *no)
}

func Test_CalculateTotalPages(t *testing.T) {
	require.Equal(t, 0, CalculateTotalPages(0, 10))
	require.Equal(t, 1, CalculateTotalPages(1, 10))
	require.Equal(t, 1, CalculateTotalPages(10, 10))
	require.Equal(t, 2, CalculateTotalPages(11, 10))
	require.Equal(t, 0, CalculateTotalPages(5, 0))
}

func Test_HashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.True(t, CheckPasswordHash("correct horse battery staple", hash))
	require.False(t, CheckPasswordHash("wrong password", hash))
}

func Test_ValidateStruct_ReportsFieldErrors(t *testing.T) {
	type form struct {
		Email    string `validate:"required,email"`
		Duration int    `validate:"required,gt=0"`
	}

	errs := ValidateStruct(form{Email: "not-an-email"})
	require.Len(t, errs, 2)
	require.Contains(t, errs, "Email")
	require.Contains(t, errs, "Duration")

	require.Nil(t, ValidateStruct(form{Email: "a@b.com", Duration: 60}))
}
