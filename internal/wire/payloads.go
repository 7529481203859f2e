package wire

func init() {
	register("Ping", func() Payload { return &Ping{} })
	register("Pong", func() Payload { return &Pong{} })
	register("Subscribe", func() Payload { return &Subscribe{} })
	register("Unsubscribe", func() Payload { return &Unsubscribe{} })
	register("Error", func() Payload { return &ErrorPayload{} })

	register("CreateProjectRequest", func() Payload { return &CreateProjectRequest{} })
	register("CreateProjectResponse", func() Payload { return &CreateProjectResponse{} })
	register("UpdateProjectRequest", func() Payload { return &UpdateProjectRequest{} })
	register("UpdateProjectResponse", func() Payload { return &UpdateProjectResponse{} })
	register("DeleteProjectRequest", func() Payload { return &DeleteProjectRequest{} })
	register("DeleteProjectResponse", func() Payload { return &DeleteProjectResponse{} })
	register("GetProjectsRequest", func() Payload { return &GetProjectsRequest{} })
	register("GetProjectsList", func() Payload { return &GetProjectsList{} })
	register("ProjectCreated", func() Payload { return &ProjectCreated{} })
	register("ProjectUpdated", func() Payload { return &ProjectUpdated{} })
	register("ProjectDeleted", func() Payload { return &ProjectDeleted{} })

	register("CreateWorkItemRequest", func() Payload { return &CreateWorkItemRequest{} })
	register("CreateWorkItemResponse", func() Payload { return &CreateWorkItemResponse{} })
	register("UpdateWorkItemRequest", func() Payload { return &UpdateWorkItemRequest{} })
	register("UpdateWorkItemResponse", func() Payload { return &UpdateWorkItemResponse{} })
	register("DeleteWorkItemRequest", func() Payload { return &DeleteWorkItemRequest{} })
	register("DeleteWorkItemResponse", func() Payload { return &DeleteWorkItemResponse{} })
	register("GetWorkItemRequest", func() Payload { return &GetWorkItemRequest{} })
	register("GetWorkItemResponse", func() Payload { return &GetWorkItemResponse{} })
	register("GetWorkItemsRequest", func() Payload { return &GetWorkItemsRequest{} })
	register("GetWorkItemsList", func() Payload { return &GetWorkItemsList{} })
	register("WorkItemCreated", func() Payload { return &WorkItemCreated{} })
	register("WorkItemUpdated", func() Payload { return &WorkItemUpdated{} })
	register("WorkItemDeleted", func() Payload { return &WorkItemDeleted{} })

	register("CreateSprintRequest", func() Payload { return &CreateSprintRequest{} })
	register("CreateSprintResponse", func() Payload { return &CreateSprintResponse{} })
	register("UpdateSprintRequest", func() Payload { return &UpdateSprintRequest{} })
	register("UpdateSprintResponse", func() Payload { return &UpdateSprintResponse{} })
	register("DeleteSprintRequest", func() Payload { return &DeleteSprintRequest{} })
	register("DeleteSprintResponse", func() Payload { return &DeleteSprintResponse{} })
	register("GetSprintsRequest", func() Payload { return &GetSprintsRequest{} })
	register("GetSprintsList", func() Payload { return &GetSprintsList{} })
	register("SprintCreated", func() Payload { return &SprintCreated{} })
	register("SprintUpdated", func() Payload { return &SprintUpdated{} })
	register("SprintDeleted", func() Payload { return &SprintDeleted{} })

	register("CreateCommentRequest", func() Payload { return &CreateCommentRequest{} })
	register("CreateCommentResponse", func() Payload { return &CreateCommentResponse{} })
	register("UpdateCommentRequest", func() Payload { return &UpdateCommentRequest{} })
	register("UpdateCommentResponse", func() Payload { return &UpdateCommentResponse{} })
	register("DeleteCommentRequest", func() Payload { return &DeleteCommentRequest{} })
	register("DeleteCommentResponse", func() Payload { return &DeleteCommentResponse{} })
	register("GetCommentsRequest", func() Payload { return &GetCommentsRequest{} })
	register("GetCommentsList", func() Payload { return &GetCommentsList{} })
	register("CommentCreated", func() Payload { return &CommentCreated{} })
	register("CommentUpdated", func() Payload { return &CommentUpdated{} })
	register("CommentDeleted", func() Payload { return &CommentDeleted{} })

	register("CreateDependencyRequest", func() Payload { return &CreateDependencyRequest{} })
	register("CreateDependencyResponse", func() Payload { return &CreateDependencyResponse{} })
	register("DeleteDependencyRequest", func() Payload { return &DeleteDependencyRequest{} })
	register("DeleteDependencyResponse", func() Payload { return &DeleteDependencyResponse{} })
	register("GetDependenciesRequest", func() Payload { return &GetDependenciesRequest{} })
	register("GetDependenciesList", func() Payload { return &GetDependenciesList{} })
	register("DependencyCreated", func() Payload { return &DependencyCreated{} })
	register("DependencyDeleted", func() Payload { return &DependencyDeleted{} })

	register("StartTimeEntryRequest", func() Payload { return &StartTimeEntryRequest{} })
	register("StartTimeEntryResponse", func() Payload { return &StartTimeEntryResponse{} })
	register("StopTimeEntryRequest", func() Payload { return &StopTimeEntryRequest{} })
	register("StopTimeEntryResponse", func() Payload { return &StopTimeEntryResponse{} })
	register("UpdateTimeEntryRequest", func() Payload { return &UpdateTimeEntryRequest{} })
	register("UpdateTimeEntryResponse", func() Payload { return &UpdateTimeEntryResponse{} })
	register("DeleteTimeEntryRequest", func() Payload { return &DeleteTimeEntryRequest{} })
	register("DeleteTimeEntryResponse", func() Payload { return &DeleteTimeEntryResponse{} })
	register("GetTimeEntryRequest", func() Payload { return &GetTimeEntryRequest{} })
	register("GetTimeEntryResponse", func() Payload { return &GetTimeEntryResponse{} })
	register("GetTimeEntriesRequest", func() Payload { return &GetTimeEntriesRequest{} })
	register("GetTimeEntriesList", func() Payload { return &GetTimeEntriesList{} })
	register("TimeEntryCreated", func() Payload { return &TimeEntryCreated{} })
	register("TimeEntryUpdated", func() Payload { return &TimeEntryUpdated{} })
	register("TimeEntryDeleted", func() Payload { return &TimeEntryDeleted{} })

	register("GetActivityLogRequest", func() Payload { return &GetActivityLogRequest{} })
	register("GetActivityLogList", func() Payload { return &GetActivityLogList{} })
	register("ActivityLogCreated", func() Payload { return &ActivityLogCreated{} })
}

// --- Control ---

type Ping struct{}

func (Ping) Kind() string { return "Ping" }

type Pong struct{}

func (Pong) Kind() string { return "Pong" }

type Subscribe struct {
	ProjectIDs    []string `json:"project_ids,omitempty"`
	WorkItemIDs   []string `json:"work_item_ids,omitempty"`
	SprintIDs     []string `json:"sprint_ids,omitempty"`
}

func (Subscribe) Kind() string { return "Subscribe" }

type Unsubscribe struct {
	ProjectIDs  []string `json:"project_ids,omitempty"`
	WorkItemIDs []string `json:"work_item_ids,omitempty"`
	SprintIDs   []string `json:"sprint_ids,omitempty"`
}

func (Unsubscribe) Kind() string { return "Unsubscribe" }

// --- Errors ---

type ErrorPayload struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	Field          string `json:"field,omitempty"`
	CurrentVersion int64  `json:"current_version,omitempty"`
	Count          int64  `json:"count,omitempty"`
}

func (ErrorPayload) Kind() string { return "Error" }

// --- Projects ---

type CreateProjectRequest struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (CreateProjectRequest) Kind() string { return "CreateProjectRequest" }

type CreateProjectResponse struct {
	Project ProjectDTO `json:"project"`
}

func (CreateProjectResponse) Kind() string { return "CreateProjectResponse" }

type UpdateProjectRequest struct {
	ID              string  `json:"id"`
	ExpectedVersion int64   `json:"expected_version"`
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Status          *string `json:"status,omitempty"`
}

func (UpdateProjectRequest) Kind() string { return "UpdateProjectRequest" }

type UpdateProjectResponse struct {
	Project ProjectDTO       `json:"project"`
	Changes []FieldChangeDTO `json:"changes"`
}

func (UpdateProjectResponse) Kind() string { return "UpdateProjectResponse" }

type DeleteProjectRequest struct {
	ID string `json:"id"`
}

func (DeleteProjectRequest) Kind() string { return "DeleteProjectRequest" }

type DeleteProjectResponse struct {
	ID string `json:"id"`
}

func (DeleteProjectResponse) Kind() string { return "DeleteProjectResponse" }

type GetProjectsRequest struct {
	ActiveOnly bool `json:"active_only,omitempty"`
}

func (GetProjectsRequest) Kind() string { return "GetProjectsRequest" }

type GetProjectsList struct {
	Projects []ProjectDTO `json:"projects"`
}

func (GetProjectsList) Kind() string { return "GetProjectsList" }

type ProjectCreated struct {
	Project ProjectDTO `json:"project"`
}

func (ProjectCreated) Kind() string { return "ProjectCreated" }

type ProjectUpdated struct {
	Project ProjectDTO       `json:"project"`
	Changes []FieldChangeDTO `json:"changes"`
}

func (ProjectUpdated) Kind() string { return "ProjectUpdated" }

type ProjectDeleted struct {
	ID string `json:"id"`
}

func (ProjectDeleted) Kind() string { return "ProjectDeleted" }

// --- WorkItems ---

type CreateWorkItemRequest struct {
	ProjectID   string  `json:"project_id"`
	ItemType    string  `json:"item_type"`
	ParentID    *string `json:"parent_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	StoryPoints *int64  `json:"story_points,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	SprintID    *string `json:"sprint_id,omitempty"`
}

func (CreateWorkItemRequest) Kind() string { return "CreateWorkItemRequest" }

type CreateWorkItemResponse struct {
	WorkItem WorkItemDTO `json:"work_item"`
}

func (CreateWorkItemResponse) Kind() string { return "CreateWorkItemResponse" }

type UpdateWorkItemRequest struct {
	ID              string  `json:"id"`
	ExpectedVersion int64   `json:"expected_version"`
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Status          *string `json:"status,omitempty"`
	Priority        *string `json:"priority,omitempty"`
	AssigneeID      *string `json:"assignee_id,omitempty"`
	SprintID        *string `json:"sprint_id,omitempty"`
	Position        *int64  `json:"position,omitempty"`
	StoryPoints     *int64  `json:"story_points,omitempty"`
	ParentID        *string `json:"parent_id,omitempty"`
}

func (UpdateWorkItemRequest) Kind() string { return "UpdateWorkItemRequest" }

type UpdateWorkItemResponse struct {
	WorkItem WorkItemDTO      `json:"work_item"`
	Changes  []FieldChangeDTO `json:"changes"`
}

func (UpdateWorkItemResponse) Kind() string { return "UpdateWorkItemResponse" }

type DeleteWorkItemRequest struct {
	ID string `json:"id"`
}

func (DeleteWorkItemRequest) Kind() string { return "DeleteWorkItemRequest" }

type DeleteWorkItemResponse struct {
	ID string `json:"id"`
}

func (DeleteWorkItemResponse) Kind() string { return "DeleteWorkItemResponse" }

type GetWorkItemRequest struct {
	ID string `json:"id"`
}

func (GetWorkItemRequest) Kind() string { return "GetWorkItemRequest" }

type GetWorkItemResponse struct {
	WorkItem WorkItemDTO `json:"work_item"`
}

func (GetWorkItemResponse) Kind() string { return "GetWorkItemResponse" }

type GetWorkItemsRequest struct {
	ProjectID   string  `json:"project_id"`
	ParentID    *string `json:"parent_id,omitempty"`
	OrphansOnly bool    `json:"orphans_only,omitempty"`
	ItemType    *string `json:"item_type,omitempty"`
	Status      *string `json:"status,omitempty"`
	IncludeDone bool    `json:"include_done,omitempty"`
}

func (GetWorkItemsRequest) Kind() string { return "GetWorkItemsRequest" }

type GetWorkItemsList struct {
	WorkItems []WorkItemDTO `json:"work_items"`
}

func (GetWorkItemsList) Kind() string { return "GetWorkItemsList" }

type WorkItemCreated struct {
	WorkItem WorkItemDTO `json:"work_item"`
}

func (WorkItemCreated) Kind() string { return "WorkItemCreated" }

type WorkItemUpdated struct {
	WorkItem WorkItemDTO      `json:"work_item"`
	Changes  []FieldChangeDTO `json:"changes"`
}

func (WorkItemUpdated) Kind() string { return "WorkItemUpdated" }

type WorkItemDeleted struct {
	ID string `json:"id"`
}

func (WorkItemDeleted) Kind() string { return "WorkItemDeleted" }

// --- Sprints ---

type CreateSprintRequest struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Goal      string `json:"goal,omitempty"`
	StartAt   int64  `json:"start_at"`
	EndAt     int64  `json:"end_at"`
}

func (CreateSprintRequest) Kind() string { return "CreateSprintRequest" }

type CreateSprintResponse struct {
	Sprint SprintDTO `json:"sprint"`
}

func (CreateSprintResponse) Kind() string { return "CreateSprintResponse" }

type UpdateSprintRequest struct {
	ID              string  `json:"id"`
	ExpectedVersion int64   `json:"expected_version"`
	Name            *string `json:"name,omitempty"`
	Goal            *string `json:"goal,omitempty"`
	StartAt         *int64  `json:"start_at,omitempty"`
	EndAt           *int64  `json:"end_at,omitempty"`
	Status          *string `json:"status,omitempty"`
}

func (UpdateSprintRequest) Kind() string { return "UpdateSprintRequest" }

type UpdateSprintResponse struct {
	Sprint  SprintDTO        `json:"sprint"`
	Changes []FieldChangeDTO `json:"changes"`
}

func (UpdateSprintResponse) Kind() string { return "UpdateSprintResponse" }

type DeleteSprintRequest struct {
	ID string `json:"id"`
}

func (DeleteSprintRequest) Kind() string { return "DeleteSprintRequest" }

type DeleteSprintResponse struct {
	ID string `json:"id"`
}

func (DeleteSprintResponse) Kind() string { return "DeleteSprintResponse" }

type GetSprintsRequest struct {
	ProjectID string `json:"project_id"`
}

func (GetSprintsRequest) Kind() string { return "GetSprintsRequest" }

type GetSprintsList struct {
	Sprints []SprintDTO `json:"sprints"`
}

func (GetSprintsList) Kind() string { return "GetSprintsList" }

type SprintCreated struct {
	Sprint SprintDTO `json:"sprint"`
}

func (SprintCreated) Kind() string { return "SprintCreated" }

type SprintUpdated struct {
	Sprint  SprintDTO        `json:"sprint"`
	Changes []FieldChangeDTO `json:"changes"`
}

func (SprintUpdated) Kind() string { return "SprintUpdated" }

type SprintDeleted struct {
	ID string `json:"id"`
}

func (SprintDeleted) Kind() string { return "SprintDeleted" }

// --- Comments ---

type CreateCommentRequest struct {
	WorkItemID string `json:"work_item_id"`
	Content    string `json:"content"`
}

func (CreateCommentRequest) Kind() string { return "CreateCommentRequest" }

type CreateCommentResponse struct {
	Comment CommentDTO `json:"comment"`
}

func (CreateCommentResponse) Kind() string { return "CreateCommentResponse" }

type UpdateCommentRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func (UpdateCommentRequest) Kind() string { return "UpdateCommentRequest" }

type UpdateCommentResponse struct {
	Comment CommentDTO       `json:"comment"`
	Changes []FieldChangeDTO `json:"changes"`
}

func (UpdateCommentResponse) Kind() string { return "UpdateCommentResponse" }

type DeleteCommentRequest struct {
	ID string `json:"id"`
}

func (DeleteCommentRequest) Kind() string { return "DeleteCommentRequest" }

type DeleteCommentResponse struct {
	ID string `json:"id"`
}

func (DeleteCommentResponse) Kind() string { return "DeleteCommentResponse" }

type GetCommentsRequest struct {
	WorkItemID string `json:"work_item_id"`
}

func (GetCommentsRequest) Kind() string { return "GetCommentsRequest" }

type GetCommentsList struct {
	Comments []CommentDTO `json:"comments"`
}

func (GetCommentsList) Kind() string { return "GetCommentsList" }

type CommentCreated struct {
	Comment CommentDTO `json:"comment"`
}

func (CommentCreated) Kind() string { return "CommentCreated" }

type CommentUpdated struct {
	Comment CommentDTO       `json:"comment"`
	Changes []FieldChangeDTO `json:"changes"`
}

func (CommentUpdated) Kind() string { return "CommentUpdated" }

type CommentDeleted struct {
	ID string `json:"id"`
}

func (CommentDeleted) Kind() string { return "CommentDeleted" }

// --- Dependencies ---

type CreateDependencyRequest struct {
	BlockingItemID string `json:"blocking_item_id"`
	BlockedItemID  string `json:"blocked_item_id"`
	Type           string `json:"type"`
}

func (CreateDependencyRequest) Kind() string { return "CreateDependencyRequest" }

type CreateDependencyResponse struct {
	Dependency DependencyDTO `json:"dependency"`
}

func (CreateDependencyResponse) Kind() string { return "CreateDependencyResponse" }

type DeleteDependencyRequest struct {
	ID string `json:"id"`
}

func (DeleteDependencyRequest) Kind() string { return "DeleteDependencyRequest" }

type DeleteDependencyResponse struct {
	ID string `json:"id"`
}

func (DeleteDependencyResponse) Kind() string { return "DeleteDependencyResponse" }

type GetDependenciesRequest struct {
	WorkItemID string `json:"work_item_id"`
}

func (GetDependenciesRequest) Kind() string { return "GetDependenciesRequest" }

type GetDependenciesList struct {
	Dependencies []DependencyDTO `json:"dependencies"`
}

func (GetDependenciesList) Kind() string { return "GetDependenciesList" }

type DependencyCreated struct {
	Dependency DependencyDTO `json:"dependency"`
}

func (DependencyCreated) Kind() string { return "DependencyCreated" }

type DependencyDeleted struct {
	ID string `json:"id"`
}

func (DependencyDeleted) Kind() string { return "DependencyDeleted" }

// --- TimeEntries ---

type StartTimeEntryRequest struct {
	WorkItemID  string `json:"work_item_id"`
	Description string `json:"description,omitempty"`
}

func (StartTimeEntryRequest) Kind() string { return "StartTimeEntryRequest" }

type StartTimeEntryResponse struct {
	TimeEntry TimeEntryDTO `json:"time_entry"`
}

func (StartTimeEntryResponse) Kind() string { return "StartTimeEntryResponse" }

type StopTimeEntryRequest struct {
	ID string `json:"id"`
}

func (StopTimeEntryRequest) Kind() string { return "StopTimeEntryRequest" }

type StopTimeEntryResponse struct {
	TimeEntry TimeEntryDTO `json:"time_entry"`
}

func (StopTimeEntryResponse) Kind() string { return "StopTimeEntryResponse" }

type UpdateTimeEntryRequest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

func (UpdateTimeEntryRequest) Kind() string { return "UpdateTimeEntryRequest" }

type UpdateTimeEntryResponse struct {
	TimeEntry TimeEntryDTO `json:"time_entry"`
}

func (UpdateTimeEntryResponse) Kind() string { return "UpdateTimeEntryResponse" }

type DeleteTimeEntryRequest struct {
	ID string `json:"id"`
}

func (DeleteTimeEntryRequest) Kind() string { return "DeleteTimeEntryRequest" }

type DeleteTimeEntryResponse struct {
	ID string `json:"id"`
}

func (DeleteTimeEntryResponse) Kind() string { return "DeleteTimeEntryResponse" }

type GetTimeEntryRequest struct {
	ID string `json:"id"`
}

func (GetTimeEntryRequest) Kind() string { return "GetTimeEntryRequest" }

type GetTimeEntryResponse struct {
	TimeEntry TimeEntryDTO `json:"time_entry"`
}

func (GetTimeEntryResponse) Kind() string { return "GetTimeEntryResponse" }

type GetTimeEntriesRequest struct {
	WorkItemID string `json:"work_item_id"`
}

func (GetTimeEntriesRequest) Kind() string { return "GetTimeEntriesRequest" }

type GetTimeEntriesList struct {
	TimeEntries []TimeEntryDTO `json:"time_entries"`
}

func (GetTimeEntriesList) Kind() string { return "GetTimeEntriesList" }

type TimeEntryCreated struct {
	TimeEntry TimeEntryDTO `json:"time_entry"`
}

func (TimeEntryCreated) Kind() string { return "TimeEntryCreated" }

type TimeEntryUpdated struct {
	TimeEntry TimeEntryDTO `json:"time_entry"`
}

func (TimeEntryUpdated) Kind() string { return "TimeEntryUpdated" }

type TimeEntryDeleted struct {
	ID string `json:"id"`
}

func (TimeEntryDeleted) Kind() string { return "TimeEntryDeleted" }

// --- ActivityLog ---

type GetActivityLogRequest struct {
	ProjectID        string `json:"project_id"`
	SinceEpochMillis int64  `json:"since_epoch_millis,omitempty"`
	Limit            int    `json:"limit,omitempty"`
}

func (GetActivityLogRequest) Kind() string { return "GetActivityLogRequest" }

type GetActivityLogList struct {
	Entries []ActivityLogDTO `json:"entries"`
}

func (GetActivityLogList) Kind() string { return "GetActivityLogList" }

type ActivityLogCreated struct {
	Entry ActivityLogDTO `json:"entry"`
}

func (ActivityLogCreated) Kind() string { return "ActivityLogCreated" }
