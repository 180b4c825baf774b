// internal/profile/ea900.go
package profile

import "time"

// Battery status codes, input register 71.
var batteryStatusText = map[uint16]string{
	0: "Idle",
	1: "Charging",
	2: "Discharging",
	3: "Equalized Charging",
	4: "Float Charging",
	5: "Sleep",
	6: "Disconnected",
}

// Status word bit layout, input register 70. The vendor protocol document
// numbers bits from 1; the shifts below use 0-based indexing.
var statusWordFields = []BitField{
	{Key: "rectifier_status", Name: "Rectifier Status", Shift: 0, Mask: 0x03, Labels: map[uint16]string{
		0: "Off",
		1: "Soft Start",
		2: "PFC Mode",
		3: "Battery Mode",
	}},
	{Key: "inverter_status", Name: "Inverter Status", Shift: 2, Mask: 0x03, Labels: map[uint16]string{
		0: "Off",
		1: "Soft Start",
		2: "Normal",
		3: "Standby",
	}},
	{Key: "battery_mode", Name: "Battery Mode", Shift: 4, Mask: 0x07, Labels: map[uint16]string{
		0: "Disconnected",
		1: "Standby",
		2: "Boosting",
		3: "Floating",
		4: "Discharging",
	}},
	{Key: "bypass_status", Name: "Bypass Status", Shift: 7, Mask: 0x03, Labels: map[uint16]string{
		0: "No Bypass",
		1: "Normal",
	}},
	{Key: "load_on_status", Name: "Load On Status", Shift: 9, Mask: 0x03, Labels: map[uint16]string{
		0: "None",
		1: "Load On Bypass",
		2: "Load On Inverter",
		3: "Load On Other",
	}},
}

// EA900 G4 register map (Intelbras DNB 6kVA). Addresses confirmed against
// live hardware; several differ from the published EA660 documentation.
var ea900g4 = &DeviceProfile{
	Model:        "EA900 G4",
	Manufacturer: "EAST Group / Intelbras",
	Defaults: Defaults{
		BaudRate:     9600,
		SlaveID:      1,
		PollInterval: 30 * time.Second,
	},
	Specs: []RegisterSpec{
		// ---- input (grid) ----
		{Key: "input_voltage", Name: "Input Voltage", Table: TableInput, Address: 0, Width: 1, Scale: scale(0.1), Unit: "V", DeviceClass: "voltage", Kind: KindNumeric},
		{Key: "input_current", Name: "Input Current", Table: TableInput, Address: 15, Width: 1, Scale: scale(0.1), Unit: "A", DeviceClass: "current", Kind: KindNumeric},
		{Key: "input_frequency", Name: "Input Frequency", Table: TableInput, Address: 18, Width: 1, Scale: scale(0.1), Unit: "Hz", DeviceClass: "frequency", Kind: KindNumeric},
		{Key: "input_power_factor", Name: "Input Power Factor", Table: TableInput, Address: 21, Width: 1, Scale: scale(1), Unit: "%", DeviceClass: "power_factor", Kind: KindNumeric},

		// ---- bypass ----
		{Key: "bypass_voltage", Name: "Bypass Voltage", Table: TableInput, Address: 12, Width: 1, Scale: scale(0.1), Unit: "V", DeviceClass: "voltage", Kind: KindNumeric},
		{Key: "bypass_frequency", Name: "Bypass Frequency", Table: TableInput, Address: 6, Width: 1, Scale: scale(0.1), Unit: "Hz", DeviceClass: "frequency", Kind: KindNumeric},

		// ---- output ----
		{Key: "output_voltage", Name: "Output Voltage", Table: TableInput, Address: 24, Width: 1, Scale: scale(0.1), Unit: "V", DeviceClass: "voltage", Kind: KindNumeric},
		{Key: "output_current", Name: "Output Current", Table: TableInput, Address: 27, Width: 1, Scale: scale(0.1), Unit: "A", DeviceClass: "current", Kind: KindNumeric},
		{Key: "output_frequency", Name: "Output Frequency", Table: TableInput, Address: 30, Width: 1, Scale: scale(0.1), Unit: "Hz", DeviceClass: "frequency", Kind: KindNumeric},
		{Key: "output_power_factor", Name: "Output Power Factor", Table: TableInput, Address: 33, Width: 1, Scale: scale(1), Unit: "%", DeviceClass: "power_factor", Kind: KindNumeric},
		// Device reports 0.1 kVA / 0.1 kW units.
		{Key: "output_apparent_power", Name: "Output Apparent Power", Table: TableInput, Address: 36, Width: 1, Scale: scale(100), Unit: "VA", DeviceClass: "apparent_power", Kind: KindNumeric},
		{Key: "output_active_power", Name: "Output Active Power", Table: TableInput, Address: 39, Width: 1, Scale: scale(100), Unit: "W", DeviceClass: "power", Kind: KindNumeric},
		{Key: "load_percentage", Name: "Load", Table: TableInput, Address: 45, Width: 1, Scale: scale(0.1), Unit: "%", Kind: KindNumeric},

		// ---- battery ----
		{Key: "battery_charge", Name: "Battery Charge", Table: TableInput, Address: 9, Width: 1, Scale: scale(1), Unit: "%", DeviceClass: "battery", Kind: KindNumeric},
		{Key: "battery_voltage", Name: "Battery Voltage", Table: TableInput, Address: 49, Width: 1, Scale: scale(0.1), Unit: "V", DeviceClass: "voltage", Kind: KindNumeric},
		{Key: "battery_current", Name: "Battery Current", Table: TableInput, Address: 51, Width: 1, Scale: scale(0.1), Unit: "A", DeviceClass: "current", Kind: KindSigned},
		{Key: "battery_remaining_time", Name: "Battery Remaining Time", Table: TableInput, Address: 54, Width: 1, Scale: scale(1), Unit: "min", DeviceClass: "duration", Kind: KindNumeric},
		{Key: "battery_remaining_capacity", Name: "Battery Remaining Capacity", Table: TableInput, Address: 55, Width: 1, Scale: scale(0.1), Unit: "%", DeviceClass: "battery", Kind: KindNumeric},

		// ---- diagnostics ----
		{Key: "inverter_current", Name: "Inverter Current", Table: TableInput, Address: 56, Width: 1, Scale: scale(0.1), Unit: "A", DeviceClass: "current", Diagnostic: true, Kind: KindNumeric},
		{Key: "rectifier_temperature", Name: "Rectifier Temperature", Table: TableInput, Address: 57, Width: 1, Scale: scale(0.1), Unit: "°C", DeviceClass: "temperature", Diagnostic: true, Kind: KindSigned},
		{Key: "inverter_temperature", Name: "Inverter Temperature", Table: TableInput, Address: 58, Width: 1, Scale: scale(0.1), Unit: "°C", DeviceClass: "temperature", Diagnostic: true, Kind: KindSigned},
		{Key: "bus_temperature", Name: "Bus Temperature", Table: TableInput, Address: 59, Width: 1, Scale: scale(0.1), Unit: "°C", DeviceClass: "temperature", Diagnostic: true, Kind: KindSigned},

		// ---- status ----
		{Key: "status_word", Name: "Status Word", Table: TableInput, Address: 70, Width: 1, Kind: KindStatusWord, Fields: statusWordFields},
		{Key: "battery_status", Name: "Battery Status", Table: TableInput, Address: 71, Width: 1, Kind: KindEnum, Enum: batteryStatusText},
		{Key: "software_version", Name: "Software Version", Table: TableInput, Address: 67, Width: 3, Diagnostic: true, Kind: KindString},

		// ---- device settings (holding) ----
		{Key: "rated_power", Name: "Rated Power", Table: TableHolding, Address: 15, Width: 1, Scale: scale(1), Unit: "VA", DeviceClass: "apparent_power", Diagnostic: true, Kind: KindNumeric},
		{Key: "battery_count", Name: "Battery Count", Table: TableHolding, Address: 5, Width: 1, Scale: scale(1), Diagnostic: true, Kind: KindNumeric},
		{Key: "cell_float_voltage", Name: "Cell Float Voltage", Table: TableHolding, Address: 7, Width: 1, Scale: scale(0.01), Unit: "V", DeviceClass: "voltage", Diagnostic: true, Kind: KindNumeric},
		{Key: "cell_boost_voltage", Name: "Cell Boost Voltage", Table: TableHolding, Address: 8, Width: 1, Scale: scale(0.01), Unit: "V", DeviceClass: "voltage", Diagnostic: true, Kind: KindNumeric},
		{Key: "battery_maintenance_cycle", Name: "Battery Maintenance Cycle", Table: TableHolding, Address: 26, Width: 1, Scale: scale(1), Unit: "d", Diagnostic: true, Kind: KindNumeric},
		// Register counts weeks; updates once per week.
		{Key: "running_time", Name: "Running Time", Table: TableHolding, Address: 27, Width: 1, Scale: scale(7), Unit: "d", DeviceClass: "duration", Kind: KindNumeric},
		{Key: "serial_number", Name: "Serial Number", Table: TableHolding, Address: 76, Width: 7, Diagnostic: true, Kind: KindString},
	},
}

func init() {
	register(ea900g4)
}
