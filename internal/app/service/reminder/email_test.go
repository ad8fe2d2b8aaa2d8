package reminder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildReminderMessage(t *testing.T) {
	sub := monthlySub()
	m := buildReminderMessage("user@example.com", sub)

	require.Equal(t, "user@example.com", m.to)
	require.Equal(t, "Reminder: Netflix is due 2025-01-31", m.subject)
	require.Contains(t, m.text, `"Netflix" is due on 2025-01-31`)
	require.Contains(t, m.text, "15.99 USD")
	require.Contains(t, m.text, "3 day(s) before")
	require.Contains(t, m.html, "<strong>Netflix</strong>")
	require.Contains(t, m.html, "2025-01-31")
	require.Contains(t, m.html, "15.99 USD")
}

func TestBuildReminderMessage_EscapesName(t *testing.T) {
	sub := monthlySub()
	sub.Name = "<script>alert(1)</script>"
	m := buildReminderMessage("user@example.com", sub)
	require.NotContains(t, m.html, "<script>")
}

func TestNewLogEntry_SnapshotsFields(t *testing.T) {
	sub := monthlySub()
	entry := newLogEntry(sub, "2025-01-28")

	require.NotEmpty(t, entry.ID)
	require.Equal(t, "sub-1", entry.SubscriptionID)
	require.Equal(t, "2025-01-28", entry.NextReminderDate)
	require.Equal(t, "2025-01-31", *entry.NextDueDate)
	require.Equal(t, 3, *entry.ReminderDaysBefore)
	require.Equal(t, "user@example.com", *entry.UserEmail)

	snap := entry.Snapshot()
	require.NotNil(t, snap)
	require.Equal(t, "Netflix", snap.Name)
	require.Equal(t, 15.99, snap.Amount)
	require.Equal(t, "USD", snap.Currency)
}
