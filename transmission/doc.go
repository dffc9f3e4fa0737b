// Package transmission decides when learner data is sent to integrated
// channels.
//
// An Orchestrator looks up a learner, walks the channel configurations of the
// learner's enterprise customers and, for each configuration that is active
// and has real-time learner transmission enabled, hands a LearnerTransmission
// to the channel's transmitter. Channel packages (such as degreed) implement
// ChannelConfiguration and the exporter/transmitter pair.
//
// # Quick Start
//
//	orch := transmission.NewOrchestrator(users, configs,
//	    transmission.WithLogger(logger))
//
//	if err := orch.TransmitSingleLearnerData(ctx, "edx", "course-v1:edX+DemoX+Demo_Course"); err != nil {
//	    log.Printf("transmission failed: %v", err)
//	}
package transmission
