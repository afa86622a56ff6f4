// Package influxdb writes firmware changes and coordinator health
// classifications to InfluxDB v2 so they can be graphed over time.
//
// Two measurements are written:
//
//	firmware_change     tags: site, device_id   fields: version, previous_version, initial
//	coordinator_health  tags: site, state       fields: state_level, minutes_since_update,
//	                                                    update_count, last_update_success
//
// InfluxDB is optional. When influxdb.enabled is false, Connect returns
// ErrDisabled and the service runs without it.
package influxdb
