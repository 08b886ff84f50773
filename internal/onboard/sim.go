package onboard

// Dry-run mode never shells out. Instead the tick loop drives a small
// simulation that walks the task list, bumping each task's progress until it
// "succeeds", then fires a completion callback so the step engine advances
// exactly as it would after real execution.

type simCallback int

const (
	simCompleteReview simCallback = iota
	simCompleteUpdate
)

type simState struct {
	active   bool
	taskIdx  int
	progress int
	callback simCallback
}

func (m *Model) startSimulation(callback simCallback) {
	m.sim = simState{active: true, callback: callback}
	m.isExecuting = true
}

// advanceSimulation moves the current task forward by one tick.
func (m *Model) advanceSimulation() {
	if len(m.tasks) == 0 {
		m.sim.active = false
		m.isExecuting = false
		return
	}
	if m.sim.taskIdx >= len(m.tasks) {
		m.sim.active = false
		m.isExecuting = false
		m.finishSimulation()
		return
	}

	task := &m.tasks[m.sim.taskIdx]
	task.State = TaskRunning
	m.sim.progress += 10
	task.Progress = m.sim.progress
	if m.sim.progress >= 100 {
		task.Progress = 100
		task.State = TaskSuccess
		m.sim.taskIdx++
		m.sim.progress = 0
	}
}

func (m *Model) finishSimulation() {
	switch m.sim.callback {
	case simCompleteReview:
		if idx := m.stepIndex(StepReview); idx >= 0 {
			m.results[idx] = ResultCompleted
		}
		m.reviewCompleted = true
		m.unlockStep(StepUpdate)
		m.tasks = nil
		if m.stepIndex(StepUpdate) < 0 {
			m.updateCompleted = true
			m.unlockStep(StepReboot)
			m.setInfo("Configuration applied! Reboot to finish setup.")
		} else {
			m.setInfo("Configuration applied! Select packages to install.")
		}
		m.advanceToNextStep()
	case simCompleteUpdate:
		if idx := m.stepIndex(StepUpdate); idx >= 0 {
			m.results[idx] = ResultCompleted
		}
		m.updateCompleted = true
		m.unlockStep(StepReboot)
		m.tasks = nil
		m.setInfo("Installation complete! Reboot to finish setup.")
		m.advanceToNextStep()
	}
}
