package status

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringCode(t *testing.T) {
	for code := range texts {
		require.Equal(t, strconv.Itoa(int(code)), StringCode(code))
	}

	require.Equal(t, "599", StringCode(599))
}

func TestText(t *testing.T) {
	require.Equal(t, Status("Internal Server Error"), Text(InternalServerError))
	require.Equal(t, Status("Unknown Status Code"), Text(599))
}
