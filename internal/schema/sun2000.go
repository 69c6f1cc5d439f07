// internal/schema/sun2000.go
package schema

// Built-in register map for Huawei SUN2000 inverters.
// Addresses are raw holding register addresses as documented by the vendor.

var sun2000 = []Descriptor{
	// ---- identity ----
	{Name: "model", Address: 30000, WordCount: 6, Encoding: String},
	{Name: "serial_number", Address: 30015, WordCount: 10, Encoding: String},
	{Name: "firmware_version", Address: 30035, WordCount: 6, Encoding: String},
	{Name: "rated_power", Address: 30073, WordCount: 2, Encoding: UInt32, Scale: 1},

	// ---- telemetry ----
	{Name: "active_power", Address: 32080, WordCount: 2, Encoding: Int32, Scale: 0.01},
	{Name: "reactive_power", Address: 32082, WordCount: 2, Encoding: Int32, Scale: 0.01},
	{Name: "voltages", Address: 32066, WordCount: 6, Encoding: UInt16List, Scale: 0.1}, // Uab/Ubc/Uca/Ia/Ib/Ic
	{Name: "power_factor", Address: 32084, WordCount: 2, Encoding: Float32, Scale: 0.001},
	{Name: "frequency", Address: 32085, WordCount: 2, Encoding: Float32, Scale: 0.01},
	{Name: "total_energy", Address: 32106, WordCount: 2, Encoding: UInt32, Scale: 1},
	{Name: "alarm_codes", Address: 32090, WordCount: 4, Encoding: UInt16List},

	// ---- power control ----
	{Name: "active_power_limit", Address: 40125, WordCount: 1, Encoding: UInt16, Scale: 0.1, Writable: true},
	{Name: "active_power_derating", Address: 40126, WordCount: 2, Encoding: UInt32, Scale: 1, Writable: true},
	{Name: "reactive_power_setpoint", Address: 40129, WordCount: 2, Encoding: Int32, Scale: 0.001, Writable: true},
}

// Default returns the built-in SUN2000 schema.
// It panics if the table is invalid; that is a programming error caught at startup.
func Default() *Schema {
	s, err := New(sun2000)
	if err != nil {
		panic(err)
	}
	return s
}

// DeviceFields are the identity fields served by the device info endpoint.
var DeviceFields = []string{"model", "serial_number", "firmware_version", "rated_power"}
