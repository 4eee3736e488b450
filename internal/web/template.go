package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/DWCarrot/fanctrl-rock5b/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"phaseOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"pct": func(f float32) string {
		return fmt.Sprintf("%.1f%%", f*100)
	},
	"celsius": func(f float32) string {
		return fmt.Sprintf("%.1f °C", f)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Fan Control</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Fan Control</h1>

<h2>Fan</h2>
<table>
<tr><th>Fan</th><td class="{{if .FanOn}}on{{else}}off{{end}}">{{if .FanOn}}ON{{else}}OFF{{end}}</td></tr>
<tr><th>Phase</th><td class="{{if eq (phaseOrUnknown (printf "%s" .Phase)) "UNKNOWN"}}unknown{{end}}">{{phaseOrUnknown (printf "%s" .Phase)}}</td></tr>
<tr><th>Temperature</th><td>{{celsius .Temperature}}</td></tr>
<tr><th>Duty Cycle</th><td>{{pct .DutyCycle}}</td></tr>
{{if .Config.TachChip}}<tr><th>Speed</th><td>{{.RPM}} rpm</td></tr>{{end}}
</table>

<h2>Curve</h2>
<table>
<tr><th>Stop Temperature</th><td>{{celsius .Config.Curve.StopTemperature}}</td></tr>
<tr><th>Start Temperature</th><td>{{celsius .Config.Curve.StartTemperature}}</td></tr>
<tr><th>High Temperature</th><td>{{celsius .Config.Curve.HighTemperature}}</td></tr>
<tr><th>Min Duty</th><td>{{pct .Config.Curve.MinDutyCycle}}</td></tr>
<tr><th>Max Duty</th><td>{{pct .Config.Curve.MaxDutyCycle}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Fan Started</th><td>{{.Counts.Started}}</td></tr>
<tr><th>Fan Stopped</th><td>{{.Counts.Stopped}}</td></tr>
<tr><th>Duty Changed</th><td>{{.Counts.Changed}}</td></tr>
<tr><th>Max Speed</th><td>{{.Counts.MaxSpeed}}</td></tr>
<tr><th>Sensor Errors</th><td>{{.Counts.SensorErrors}}</td></tr>
<tr><th>PWM Errors</th><td>{{.Counts.PWMErrors}}</td></tr>
<tr><th>Ticks</th><td>{{.Counts.Ticks}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Interval</th><td>{{.Config.IntervalMs}}ms</td></tr>
<tr><th>Lag Cycles</th><td>{{.Config.LagCycles}}</td></tr>
<tr><th>Max-Speed Cycles</th><td>{{.Config.MaxSpeedCycles}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
<tr><th>Thermal Zone</th><td>{{.Config.ThermalZone}}</td></tr>
<tr><th>PWM Chip</th><td>{{.Config.PWMChip}}</td></tr>
<tr><th>PWM Frequency</th><td>{{.Config.PWMFrequency}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">Metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
