package kernel

type JobID string

func NewJobID(id string) JobID { return JobID(id) }
func (r JobID) String() string { return string(r) }
func (r JobID) IsEmpty() bool  { return string(r) == "" }

type ResumeID string

func NewResumeID(id string) ResumeID { return ResumeID(id) }
func (r ResumeID) String() string    { return string(r) }
func (r ResumeID) IsEmpty() bool     { return string(r) == "" }

type SetupID string

func NewSetupID(id string) SetupID { return SetupID(id) }
func (r SetupID) String() string   { return string(r) }
func (r SetupID) IsEmpty() bool    { return string(r) == "" }

type SessionID string

func NewSessionID(id string) SessionID { return SessionID(id) }
func (r SessionID) String() string     { return string(r) }
func (r SessionID) IsEmpty() bool      { return string(r) == "" }

type InterviewResultID string

func NewInterviewResultID(id string) InterviewResultID { return InterviewResultID(id) }
func (r InterviewResultID) String() string             { return string(r) }
func (r InterviewResultID) IsEmpty() bool              { return string(r) == "" }

type UploadID string

func NewUploadID(id string) UploadID { return UploadID(id) }
func (r UploadID) String() string    { return string(r) }
func (r UploadID) IsEmpty() bool     { return string(r) == "" }

type BatchID string

func NewBatchID(id string) BatchID { return BatchID(id) }
func (r BatchID) String() string   { return string(r) }
func (r BatchID) IsEmpty() bool    { return string(r) == "" }
