// Package messaging publishes JSON events to NATS.
//
// The sync service uses it to announce finished runs: every report is
// published on "{subject_prefix}.{direction}" so other systems can react to
// drift without polling the report archive.
//
// The Conn interface is the slice of *nats.Conn the publisher needs; tests
// substitute an in-memory recorder.
//
// # Usage
//
//	pub, err := messaging.Connect(cfg.Messaging, logger)
//	if err != nil {
//	    return err
//	}
//	defer pub.Close()
//	err = pub.PublishJSON(ctx, "from-cloudvision", report)
package messaging
