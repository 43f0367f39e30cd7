package xslog

import (
	"log/slog"
	"time"
)

func Error(err error) slog.Attr {
	const errorKey = "error"
	return slog.String(errorKey, err.Error())
}

func Component(name string) slog.Attr {
	const componentKey = "component"
	return slog.String(componentKey, name)
}

func Sensor(name string) slog.Attr {
	const sensorKey = "sensor"
	return slog.String(sensorKey, name)
}

func Channel(ch int) slog.Attr {
	const channelKey = "channel"
	return slog.Int(channelKey, ch)
}

func Duration(d time.Duration) slog.Attr {
	const durationKey = "duration_ms"
	return slog.Int64(durationKey, d.Milliseconds())
}
