package tracelog

import (
	"fmt"

	"k8s.io/klog/v2"
)

// DefaultLoadTestIterations is the message count of the built-in load
// test triggered over the control plane.
const DefaultLoadTestIterations = 1000000

// RunLoadTest drives a full writer cycle: Start, then up to iterations
// small raw messages of cycling sizes, then Roll and Stop. It gives up
// as soon as an alloc reports no page, and returns how many messages
// were committed.
func RunLoadTest(s *Session, iterations int) int {
	s.Start()
	written := 0
	for i := 0; i < iterations; i++ {
		n := i%1024 + 10
		msg, err := s.Alloc(n, TypeRaw)
		if err != nil {
			klog.Errorf("tracelog: load test alloc %d: %v", i, err)
			break
		}
		copy(msg.Bytes(), fmt.Sprintf("%x,%x", i, n))
		if err := s.Commit(); err != nil {
			klog.Errorf("tracelog: load test commit %d: %v", i, err)
			break
		}
		written++
	}
	if err := s.Roll(); err != nil {
		klog.Errorf("tracelog: load test roll: %v", err)
	}
	if err := s.Stop(); err != nil {
		klog.Errorf("tracelog: load test stop: %v", err)
	}
	return written
}
