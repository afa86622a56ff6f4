// Package mqtt connects the service to the broker that carries device
// snapshots and coordinator status from the Ring poller.
//
// Inbound, the service subscribes to <prefix>/snapshot/+ and
// <prefix>/coordinator/status. Outbound, it publishes firmware change
// events to <prefix>/firmware/<device>/changed and the retained health
// classification to <prefix>/coordinator/health. A retained
// <prefix>/extended/status message (with a matching Last Will) tells
// other consumers whether the service is up.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := client.Topics()
//	err = client.Subscribe(topics.AllSnapshots(), 1, func(topic string, payload []byte) error {
//	    id, _ := topics.SnapshotDevice(topic)
//	    return pipeline.HandleSnapshot(ctx, id, payload)
//	})
package mqtt
