package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQuantity(t *testing.T) {
	t.Parallel()

	require.Equal(t, "300", Quantity("300", "en"))
	require.Equal(t, "1,500", Quantity("1500", "en"))
	require.Equal(t, "12.5", Quantity("12.5", "en"))
	require.Equal(t, "15 Mbps", Quantity("15 Mbps", "en"))
	require.Equal(t, "", Quantity("", "en"))
}

func TestFmtDate(t *testing.T) {
	t.Parallel()

	d := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "Jan 12, 2025", FmtDate(d, "en"))
	require.Equal(t, "2025/01/12", FmtDate(d, "ar"))
	require.Equal(t, "", FmtDate(time.Time{}, "en"))
}
