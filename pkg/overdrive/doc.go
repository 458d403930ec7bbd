// Package overdrive provides an embeddable direct-actuation override service.
//
// An external controller sends raw four-motor commands over UDP. The service
// forwards them to the actuators while they are fresh and drives every
// actuator to zero once they go stale or the channel is disabled.
//
// # Basic Usage
//
//	cfg := overdrive.DefaultConfig()
//	cfg.Enable = true
//
//	svc, err := overdrive.New(cfg, overdrive.WithActuator(myDriver))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := svc.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Stop()
//
// # Safety
//
// Stop, and any worker failure, ends with one final call per motor driving
// it to zero. The service never validates command values; limits belong in
// the actuator.
//
// # Events
//
// Implement [EventHandler] (embedding [BaseEventHandler] for defaults) and
// pass it with [WithEventHandler]. Mode changes are reported from the step
// goroutine, so handlers must return quickly.
package overdrive
