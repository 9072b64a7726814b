package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device variant ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that variant
// -----------------------------------------------------------------------------

const cfgXiaoESP32S3 = `{
  "radio": {
      "name": "XIAO-ESP32S3-Test"
  },
  "serial": {
      "poll_ms": 100,
      "max_line": 128
  },
  "heartbeat": {
      "interval": 30
  }
}`

var embeddedConfigs = map[string][]byte{
	"xiao-esp32s3": []byte(cfgXiaoESP32S3),
}
