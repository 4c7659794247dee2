package usecases

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/samirrijal/weathermap/internal/core/domain"
)

// msToKmh converts meters per second to kilometers per hour.
const msToKmh = 3.6

var infoWindowTmpl = template.Must(template.New("info").Parse(`
<div>
  <span>City:</span> <b>{{.City}}</b><br />
  <span>Temperature:</span> <b>{{.Temp}}°C</b><br />
  <span>Humidity:</span> <b>{{.Humidity}}%</b><br />
  <span>Wind:</span> <b>{{.Wind}}km/h</b><br />
</div>
`))

// InfoWindowContent renders the popup shown when a marker is clicked.
func InfoWindowContent(obs domain.Observation) string {
	data := struct {
		City, Temp, Humidity, Wind string
	}{
		City:     obs.Name,
		Temp:     formatNumber(obs.Main.Temp),
		Humidity: formatNumber(obs.Main.Humidity),
		Wind:     strconv.FormatFloat(obs.Wind.Speed*msToKmh, 'f', 2, 64),
	}

	var sb strings.Builder
	_ = infoWindowTmpl.Execute(&sb, data)
	return sb.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
