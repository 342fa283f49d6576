package gateway

import (
	"bytes"
	"testing"
	"time"

	"tokoadmin/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeClass(t *testing.T) {
	cases := map[models.ShipmentStatus]string{
		models.StatusPending:  "secondary",
		models.StatusDikirim:  "primary",
		models.StatusTerkirim: "success",
		"Dibatalkan":          "danger",
		"dalam perjalanan":    "warning",
		"unknown":             "secondary",
	}
	for status, want := range cases {
		assert.Equal(t, want, badgeClass(status), string(status))
	}
}

func TestFormatTime(t *testing.T) {
	var missing *time.Time
	assert.Equal(t, "-", formatTime(missing))
	assert.Equal(t, "-", formatTime(time.Time{}))
	assert.Equal(t, "-", formatTime("yesterday"))

	at := time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local)
	assert.Equal(t, "09 Mar 2024 14:05", formatTime(at))
	assert.Equal(t, "09 Mar 2024 14:05", formatTime(&at))
}

func TestViewsRender(t *testing.T) {
	views, err := LoadViews()
	require.NoError(t, err)

	user := &models.UserView{ID: 1, Name: "Sari", Email: "sari@example.com"}
	render := func(name string, data fiber.Map) string {
		var buf bytes.Buffer
		err := views.Render(&buf, name, page{
			Title:    "T",
			User:     user,
			Settings: Settings{Theme: "dark"},
			Flashes:  []Flash{{Kind: FlashSuccess, Text: "Saved"}},
			Data:     data,
		})
		require.NoError(t, err, name)
		return buf.String()
	}

	body := render("shipping_detail", fiber.Map{
		"Shipment": &models.Shipment{ID: 3, Address: "Jl. Sudirman 5", Status: models.StatusTerkirim},
		"Product":  (*models.Product)(nil),
		"Statuses": models.ShipmentStatuses,
	})
	assert.Contains(t, body, "text-bg-success")
	assert.Contains(t, body, "Product is no longer available")
	assert.Contains(t, body, `<option value="terkirim" selected>`)
	assert.Contains(t, body, "alert-success")
	assert.Contains(t, body, `data-bs-theme="dark"`)

	body = render("products", fiber.Map{
		"Products": []models.Product{{ID: 4, Name: "Gula <1kg>", Price: decimal.RequireFromString("12500")}},
	})
	assert.Contains(t, body, "Rp 12500.00")
	assert.Contains(t, body, "Gula &lt;1kg&gt;")

	body = render("error", fiber.Map{"Status": 502, "Message": "down"})
	assert.Contains(t, body, "Error 502")

	err = views.Render(&bytes.Buffer{}, "missing", page{})
	assert.Error(t, err)
}
