package session

import "classpulse/internal/model"

// Outbound event types
const (
	EvtRegistrationSuccess = "registration_success"
	EvtRegistrationError   = "registration_error"
	EvtStudentsUpdate      = "students_update"
	EvtStudentsList        = "students_list"
	EvtKicked              = "kicked"
	EvtNewPoll             = "new_poll"
	EvtPollError           = "poll_error"
	EvtAnswerError         = "answer_error"
	EvtPollResultsUpdate   = "poll_results_update"
	EvtPollClosed          = "poll_closed"
	EvtPollStatus          = "poll_status"
	EvtChatMessage         = "chat_message"
)

type RegistrationSuccess struct {
	Name string `json:"name"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type StudentsUpdate struct {
	Count    int                  `json:"count"`
	Students []*model.Participant `json:"students"`
}

type StudentsList struct {
	Students []*model.Participant `json:"students"`
}

type NewPoll struct {
	Poll *model.Poll `json:"poll"`
}

type PollResultsUpdate struct {
	Tally          map[string]int `json:"tally"`
	TotalResponses int            `json:"totalResponses"`
	TotalStudents  int            `json:"totalStudents"`
}

type PollClosed struct {
	Poll           *model.Poll    `json:"poll"`
	FinalTally     map[string]int `json:"finalTally"`
	TotalResponses int            `json:"totalResponses"`
	TotalStudents  int            `json:"totalStudents"`
}

type PollStatus struct {
	CurrentPoll   *model.Poll `json:"currentPoll"`
	StudentCount  int         `json:"studentCount"`
	ResponseCount int         `json:"responseCount"`
}

type ChatMessage struct {
	Sender   string `json:"sender"`
	Text     string `json:"text"`
	SenderID string `json:"senderId"`
}
