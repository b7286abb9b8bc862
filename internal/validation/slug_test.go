package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp", "acme-corp"},
		{"Çiçek Sepeti", "cicek-sepeti"},
		{"Güneş Öğütücü", "gunes-ogutucu"},
		{"IŞIK Teknoloji", "isik-teknoloji"},
		{"İstanbul Kahve", "istanbul-kahve"},
		{"  --Hello,   World!--  ", "hello-world"},
		{"A&B 2024", "a-b-2024"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
