package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters exposed on /metrics alongside the default process collectors.
var (
	StudentsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classtrack_students_registered_total",
		Help: "Students successfully registered.",
	})

	AttendanceRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classtrack_attendance_recorded_total",
		Help: "Attendance records successfully written.",
	})

	AttendanceRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classtrack_attendance_rejected_total",
		Help: "Attendance attempts rejected by validation, by reason.",
	}, []string{"reason"})
)
