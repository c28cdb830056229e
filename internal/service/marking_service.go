package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/efile-routing-api/internal/dto"
	"github.com/noah-isme/efile-routing-api/internal/models"
	"github.com/noah-isme/efile-routing-api/internal/repository"
	appErrors "github.com/noah-isme/efile-routing-api/pkg/errors"
)

type markingTxProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type fileStore interface {
	GetByID(ctx context.Context, id string) (*models.CaseFile, error)
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.CaseFile, error)
	UpdateAssignment(ctx context.Context, exec sqlx.ExtContext, params repository.AssignmentParams) error
}

type workflowStore interface {
	GetByFileID(ctx context.Context, exec sqlx.ExtContext, fileID string) (*models.WorkflowState, error)
	Create(ctx context.Context, exec sqlx.ExtContext, state *models.WorkflowState) error
	Update(ctx context.Context, exec sqlx.ExtContext, state *models.WorkflowState) error
}

type movementStore interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, movement *models.Movement) error
}

type markingPersonStore interface {
	FindByID(ctx context.Context, id string) (*models.Person, error)
	FindActiveByUserID(ctx context.Context, userID string) (*models.Person, error)
	AreTeammates(ctx context.Context, a, b string) (bool, error)
	AssistantsForManager(ctx context.Context, managerPersonID string) ([]models.Person, error)
}

type permissionChecker interface {
	CanMarkFile(ctx context.Context, fileID, personID string) (bool, error)
	CanMarkFileForward(ctx context.Context, fileID, fromPersonID, toPersonID string) (*repository.ForwardCheck, error)
}

type recipientComputer interface {
	ComputeEligibleRecipients(ctx context.Context, file *models.CaseFile, actor *models.Person) ([]models.RecipientCandidate, error)
}

type geoMatchValidator interface {
	Validate(ctx context.Context, in GeoValidationInput) error
}

type deadlineComputer interface {
	ComputeDeadline(ctx context.Context, fromRoleCode, toRoleCode string) *time.Time
}

type notificationDispatcher interface {
	Dispatch(notifications []models.Notification)
}

type markingAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// MarkingService is the transactional use case tying the routing engine
// together: permissions, eligibility, geographic validation, state
// transition, SLA arithmetic, ledger append and assignment, all inside one
// database transaction. Notifications fire after commit, best-effort.
type MarkingService struct {
	tx            markingTxProvider
	files         fileStore
	workflows     workflowStore
	movements     movementStore
	persons       markingPersonStore
	permissions   permissionChecker
	eligibility   recipientComputer
	geography     locationResolver
	geoValidator  geoMatchValidator
	sla           deadlineComputer
	notifications notificationDispatcher
	audit         markingAuditLogger
	validator     *validator.Validate
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewMarkingService wires the orchestrator.
func NewMarkingService(
	tx markingTxProvider,
	files fileStore,
	workflows workflowStore,
	movements movementStore,
	persons markingPersonStore,
	permissions permissionChecker,
	eligibility recipientComputer,
	geography locationResolver,
	geoValidator geoMatchValidator,
	sla deadlineComputer,
	notifications notificationDispatcher,
	audit markingAuditLogger,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
) *MarkingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkingService{
		tx:            tx,
		files:         files,
		workflows:     workflows,
		movements:     movements,
		persons:       persons,
		permissions:   permissions,
		eligibility:   eligibility,
		geography:     geography,
		geoValidator:  geoValidator,
		sla:           sla,
		notifications: notifications,
		audit:         audit,
		validator:     validate,
		metrics:       metrics,
		logger:        logger,
	}
}

// ListRecipients computes the eligible recipient picker payload for the
// acting user.
func (s *MarkingService) ListRecipients(ctx context.Context, fileID string, claims *models.JWTClaims) (*dto.RecipientListResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	actor, err := s.persons.FindActiveByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoProfile
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve e-filing profile")
	}
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	recipients, err := s.eligibility.ComputeEligibleRecipients(ctx, file, actor)
	if err != nil {
		return nil, err
	}
	return &dto.RecipientListResponse{FileID: file.ID, Recipients: recipients}, nil
}

// MarkFile routes a file one hop. Only the first target id is processed;
// re-submission appends a second movement by design.
func (s *MarkingService) MarkFile(ctx context.Context, fileID string, claims *models.JWTClaims, req dto.MarkFileRequest) (result *dto.MarkFileResponse, err error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	targetID := req.TargetPersonIDs[0]

	defer func() {
		if s.metrics != nil {
			if err != nil {
				s.metrics.RecordMarking("rejected")
			} else {
				s.metrics.RecordMarking("completed")
			}
		}
	}()

	// Precondition 1: active e-filing profile.
	actor, err := s.persons.FindActiveByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoProfile
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve e-filing profile")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock the file row before any eligibility read so exactly one
	// concurrent mover wins.
	file, err := s.files.GetForUpdate(ctx, tx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock file")
	}

	// Precondition 2: mark permission and signature gate, system admins
	// excepted.
	if !claims.IsSystemAdmin() {
		allowed, permErr := s.permissions.CanMarkFile(ctx, file.ID, actor.ID)
		if permErr != nil {
			err = appErrors.Wrap(permErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mark permission")
			return nil, err
		}
		if !allowed {
			err = appErrors.ErrNoMarkPermission
			return nil, err
		}
		forward, fwdErr := s.permissions.CanMarkFileForward(ctx, file.ID, actor.ID, targetID)
		if fwdErr != nil {
			err = appErrors.Wrap(fwdErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check forward permission")
			return nil, err
		}
		if !forward.CanMark {
			message := forward.Reason
			if message == "" {
				message = appErrors.ErrSignatureRequired.Message
			}
			err = appErrors.Clone(appErrors.ErrSignatureRequired, message)
			return nil, err
		}
	}

	// Precondition 3: target admitted by the eligibility engine.
	recipients, err := s.eligibility.ComputeEligibleRecipients(ctx, file, actor)
	if err != nil {
		return nil, err
	}
	candidate, ok := FindCandidate(recipients, targetID)
	if !ok {
		err = appErrors.ErrNotEligible
		return nil, err
	}

	// Precondition 4: target exists and is active.
	target, err := s.persons.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.ErrTargetInactive
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recipient")
		return nil, err
	}
	if !target.Active {
		err = appErrors.ErrTargetInactive
		return nil, err
	}

	teamInternal, err := s.persons.AreTeammates(ctx, actor.ID, target.ID)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check team relationship")
		return nil, err
	}

	// Precondition 5: geographic validation.
	fileLoc := s.geography.ResolveFileLocation(ctx, file)
	targetLoc := s.geography.ResolveLocation(ctx, target)
	err = s.geoValidator.Validate(ctx, GeoValidationInput{
		FileLocation:   fileLoc,
		TargetLocation: targetLoc,
		Scope:          candidate.AllowedScope,
		ActorRoleCode:  actor.RoleCode,
		ActorRoleID:    actor.RoleID,
		TargetRoleID:   target.RoleID,
		TeamInternal:   teamInternal,
	})
	if err != nil {
		return nil, err
	}

	// State transition.
	state, err := s.workflows.GetByFileID(ctx, tx, file.ID)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workflow state")
		return nil, err
	}
	currentState := models.StateTeamInternal
	previousTat := false
	if state != nil {
		currentState = state.CurrentState
		previousTat = state.TatActive
	}

	event := ClassifyMove(MoveContext{
		CurrentState:    currentState,
		TargetIsCreator: target.ID == file.CreatedBy,
		TargetRoleCode:  target.RoleCode,
		TeamInternal:    teamInternal,
	})
	nextState := NextState(currentState, event)
	tatStarted := StartsTat(event)

	if state == nil {
		state = &models.WorkflowState{
			FileID:       file.ID,
			CurrentState: nextState,
			LastActorID:  &actor.ID,
			TatActive:    TatActiveAfter(event, previousTat),
		}
		if err = s.workflows.Create(ctx, tx, state); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create workflow state")
			return nil, err
		}
	} else {
		state.CurrentState = nextState
		state.LastActorID = &actor.ID
		state.TatActive = TatActiveAfter(event, previousTat)
		if err = s.workflows.Update(ctx, tx, state); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update workflow state")
			return nil, err
		}
	}

	// Deadline only when the clock starts; nil keeps the stored value.
	var deadline *time.Time
	if tatStarted && !teamInternal {
		deadline = s.sla.ComputeDeadline(ctx, actor.RoleCode, target.RoleCode)
	}

	if err = s.files.UpdateAssignment(ctx, tx, repository.AssignmentParams{
		FileID:          file.ID,
		AssignedTo:      target.ID,
		WorkflowStateID: state.ID,
		SLADeadline:     deadline,
	}); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
		return nil, err
	}

	movement := buildMovement(file, actor, target, req.Remarks, event, teamInternal, tatStarted)
	if err = s.movements.Insert(ctx, tx, movement); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record movement")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit marking")
		return nil, err
	}

	s.afterCommit(ctx, claims, file, actor, target, movement, event)
	if tatStarted && s.metrics != nil {
		s.metrics.RecordTatStarted()
	}

	// Fresh picker list for the new holder; failure here never undoes the
	// committed marking.
	var refreshed []models.RecipientCandidate
	if updated, listErr := s.eligibility.ComputeEligibleRecipients(ctx, file, target); listErr != nil {
		s.logger.Warn("failed to refresh recipient list after marking",
			zap.String("file_id", file.ID), zap.Error(listErr))
	} else {
		refreshed = updated
	}

	return &dto.MarkFileResponse{
		State:          nextState,
		IsTeamInternal: teamInternal,
		TatStarted:     tatStarted,
		Movement:       movement,
		Recipients:     refreshed,
	}, nil
}

// buildMovement snapshots both parties into an immutable ledger row.
func buildMovement(file *models.CaseFile, actor, target *models.Person, remarks string, event models.MoveEventKind, teamInternal, tatStarted bool) *models.Movement {
	action := models.ActionMarkTo
	if event == models.EventReturnToCreator {
		action = models.ActionReturnToCreator
	}
	return &models.Movement{
		FileID:            file.ID,
		FromPersonID:      actor.ID,
		ToPersonID:        target.ID,
		FromDepartmentID:  actor.DepartmentID,
		ToDepartmentID:    target.DepartmentID,
		ActionType:        action,
		Remarks:           remarks,
		IsTeamInternal:    teamInternal,
		IsReturnToCreator: event == models.EventReturnToCreator,
		TatStarted:        tatStarted,
		FromName:          actor.FullName,
		FromDesignation:   actor.Designation,
		FromTownID:        actor.TownID,
		FromDivisionID:    actor.DivisionID,
		ToName:            target.FullName,
		ToDesignation:     target.Designation,
		ToTownID:          target.TownID,
		ToDivisionID:      target.DivisionID,
		CreatedAt:         time.Now().UTC(),
	}
}

// afterCommit emits the audit row and the best-effort notification batch.
// Nothing here may fail the already-committed marking.
func (s *MarkingService) afterCommit(ctx context.Context, claims *models.JWTClaims, file *models.CaseFile, actor, target *models.Person, movement *models.Movement, event models.MoveEventKind) {
	if s.audit != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"movement_id": movement.ID,
			"to":          target.ID,
			"action":      movement.ActionType,
		})
		if auditErr := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &claims.UserID,
			Action:     models.AuditActionMarkFile,
			Resource:   "case_file",
			ResourceID: &file.ID,
			NewValues:  payload,
		}); auditErr != nil {
			s.logger.Warn("failed to write marking audit log", zap.String("file_id", file.ID), zap.Error(auditErr))
		}
	}

	if s.notifications == nil {
		return
	}

	notificationType := models.NotificationFileMarked
	message := fmt.Sprintf("File %s marked to you by %s", file.FileNumber, actor.FullName)
	if event == models.EventReturnToCreator {
		notificationType = models.NotificationFileReturned
		message = fmt.Sprintf("File %s returned to you by %s", file.FileNumber, actor.FullName)
	}
	batch := []models.Notification{{
		PersonID: target.ID,
		FileID:   file.ID,
		Type:     notificationType,
		Message:  message,
	}}

	// SE/CE recipients fan out read-only visibility to their assistants.
	if target.RoleCode == models.RoleCodeSE || target.RoleCode == models.RoleCodeCE {
		assistants, fanErr := s.persons.AssistantsForManager(ctx, target.ID)
		if fanErr != nil {
			s.logger.Warn("assistant fan-out lookup failed", zap.String("person_id", target.ID), zap.Error(fanErr))
		} else {
			for _, assistant := range assistants {
				batch = append(batch, models.Notification{
					PersonID: assistant.ID,
					FileID:   file.ID,
					Type:     models.NotificationVisibility,
					Message:  fmt.Sprintf("File %s marked to %s", file.FileNumber, target.FullName),
				})
			}
		}
	}

	s.notifications.Dispatch(batch)
}
