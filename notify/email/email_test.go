package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

func TestSendQuotaAlert_Skips(t *testing.T) {
	quota := &imagesvc.Quota{UserID: 1, DiskSpacePercent: 95}

	t.Run("disabled", func(t *testing.T) {
		n := New(&config.EmailConfig{Enabled: false})
		assert.NoError(t, n.SendQuotaAlert("alice", quota))
	})

	t.Run("no admin email", func(t *testing.T) {
		n := New(&config.EmailConfig{Enabled: true})
		assert.NoError(t, n.SendQuotaAlert("alice", quota))
	})
}

func TestGenerateEmailBody(t *testing.T) {
	n := New(&config.EmailConfig{Enabled: true, AdminEmail: "admin@example.com"})

	body, err := n.generateEmailBody(QuotaAlert{
		Username:         "alice",
		UserID:           42,
		DiskSpaceUsed:    "950.00 МБ",
		DiskSpaceQuota:   "1.00 ГБ",
		DiskSpacePercent: 95,
		ImagesUsed:       80,
		ImagesQuota:      100,
	})
	require.NoError(t, err)

	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "95%")
	assert.Contains(t, body, "950.00 МБ")
	assert.Contains(t, body, "80 / 100")
}
