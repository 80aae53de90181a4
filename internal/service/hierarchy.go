package service

import (
	"context"
	"errors"

	"prodtrack/internal/model"
	"prodtrack/internal/repository"
)

// EntityHierarchy resolves entity kinds and the shot → sequence → episode
// chain. It never writes entities, only the canonical entity types.
type EntityHierarchy struct {
	repo *repository.EntityRepository
}

func NewEntityHierarchy(repo *repository.EntityRepository) *EntityHierarchy {
	return &EntityHierarchy{repo: repo}
}

// Lineage holds the resolved ancestors of an entity. Missing levels are nil.
type Lineage struct {
	Sequence *model.Entity
	Episode  *model.Entity
}

func (h *EntityHierarchy) Entity(ctx context.Context, id string) (*model.Entity, error) {
	entityID, err := repository.ParseID(id, repository.ErrEntityNotFound)
	if err != nil {
		return nil, err
	}
	return h.repo.GetByID(ctx, entityID)
}

func (h *EntityHierarchy) EntityType(ctx context.Context, entity *model.Entity) (*model.EntityType, error) {
	return h.repo.GetTypeByID(ctx, entity.EntityTypeID)
}

// typeByName returns the entity type with that name, creating it if needed.
func (h *EntityHierarchy) typeByName(ctx context.Context, name string) (*model.EntityType, error) {
	entityType, err := h.repo.FindTypeByName(ctx, name)
	if err != nil || entityType != nil {
		return entityType, err
	}
	entityType = &model.EntityType{Name: name}
	err = h.repo.CreateType(ctx, entityType)
	if repository.IsUniqueViolation(err) {
		entityType, err = h.repo.FindTypeByName(ctx, name)
		if err == nil && entityType == nil {
			err = repository.ErrEntityTypeNotFound
		}
		return entityType, err
	}
	if err != nil {
		return nil, err
	}
	return entityType, nil
}

func (h *EntityHierarchy) ShotType(ctx context.Context) (*model.EntityType, error) {
	return h.typeByName(ctx, model.EntityTypeShot)
}

func (h *EntityHierarchy) SceneType(ctx context.Context) (*model.EntityType, error) {
	return h.typeByName(ctx, model.EntityTypeScene)
}

func (h *EntityHierarchy) SequenceType(ctx context.Context) (*model.EntityType, error) {
	return h.typeByName(ctx, model.EntityTypeSequence)
}

func (h *EntityHierarchy) EpisodeType(ctx context.Context) (*model.EntityType, error) {
	return h.typeByName(ctx, model.EntityTypeEpisode)
}

func (h *EntityHierarchy) is(ctx context.Context, entity *model.Entity, typeName string) (bool, error) {
	entityType, err := h.typeByName(ctx, typeName)
	if err != nil {
		return false, err
	}
	return entity.EntityTypeID == entityType.ID, nil
}

func (h *EntityHierarchy) IsShot(ctx context.Context, entity *model.Entity) (bool, error) {
	return h.is(ctx, entity, model.EntityTypeShot)
}

func (h *EntityHierarchy) IsScene(ctx context.Context, entity *model.Entity) (bool, error) {
	return h.is(ctx, entity, model.EntityTypeScene)
}

func (h *EntityHierarchy) IsSequence(ctx context.Context, entity *model.Entity) (bool, error) {
	return h.is(ctx, entity, model.EntityTypeSequence)
}

func (h *EntityHierarchy) IsEpisode(ctx context.Context, entity *model.Entity) (bool, error) {
	return h.is(ctx, entity, model.EntityTypeEpisode)
}

// IsAsset reports whether the entity is outside the shot hierarchy.
func (h *EntityHierarchy) IsAsset(ctx context.Context, entity *model.Entity) (bool, error) {
	entityType, err := h.EntityType(ctx, entity)
	if err != nil {
		return false, err
	}
	return entityType.IsAsset(), nil
}

// ofKind loads the entity and checks its type; any failure is notFound.
func (h *EntityHierarchy) ofKind(ctx context.Context, id, typeName string, notFound error) (*model.Entity, error) {
	entity, err := h.Entity(ctx, id)
	if errors.Is(err, repository.ErrEntityNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	ok, err := h.is(ctx, entity, typeName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound
	}
	return entity, nil
}

func (h *EntityHierarchy) Shot(ctx context.Context, id string) (*model.Entity, error) {
	return h.ofKind(ctx, id, model.EntityTypeShot, repository.ErrShotNotFound)
}

func (h *EntityHierarchy) Scene(ctx context.Context, id string) (*model.Entity, error) {
	return h.ofKind(ctx, id, model.EntityTypeScene, repository.ErrSceneNotFound)
}

func (h *EntityHierarchy) Sequence(ctx context.Context, id string) (*model.Entity, error) {
	return h.ofKind(ctx, id, model.EntityTypeSequence, repository.ErrSequenceNotFound)
}

func (h *EntityHierarchy) Episode(ctx context.Context, id string) (*model.Entity, error) {
	return h.ofKind(ctx, id, model.EntityTypeEpisode, repository.ErrEpisodeNotFound)
}

// Asset loads an entity whose type is not part of the shot hierarchy.
func (h *EntityHierarchy) Asset(ctx context.Context, id string) (*model.Entity, error) {
	entity, err := h.Entity(ctx, id)
	if errors.Is(err, repository.ErrEntityNotFound) {
		return nil, repository.ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	ok, err := h.IsAsset(ctx, entity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrAssetNotFound
	}
	return entity, nil
}

// parentOfKind returns the entity's parent when it exists and has the given
// type, nil otherwise.
func (h *EntityHierarchy) parentOfKind(ctx context.Context, entity *model.Entity, typeName string) (*model.Entity, error) {
	if entity == nil || entity.ParentID == nil {
		return nil, nil
	}
	parent, err := h.repo.GetByID(ctx, *entity.ParentID)
	if errors.Is(err, repository.ErrEntityNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ok, err := h.is(ctx, parent, typeName)
	if err != nil || !ok {
		return nil, err
	}
	return parent, nil
}

// SequenceForShot returns the sequence a shot or scene belongs to, or
// ErrSequenceNotFound when it has none.
func (h *EntityHierarchy) SequenceForShot(ctx context.Context, shot *model.Entity) (*model.Entity, error) {
	sequence, err := h.parentOfKind(ctx, shot, model.EntityTypeSequence)
	if err != nil {
		return nil, err
	}
	if sequence == nil {
		return nil, repository.ErrSequenceNotFound
	}
	return sequence, nil
}

// EpisodeForSequence returns the episode a sequence belongs to, or
// ErrEpisodeNotFound when it has none.
func (h *EntityHierarchy) EpisodeForSequence(ctx context.Context, sequence *model.Entity) (*model.Entity, error) {
	episode, err := h.parentOfKind(ctx, sequence, model.EntityTypeEpisode)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, repository.ErrEpisodeNotFound
	}
	return episode, nil
}

// Lineage resolves the sequence and episode above a shot or scene. Missing
// ancestors are left nil rather than reported.
func (h *EntityHierarchy) Lineage(ctx context.Context, entity *model.Entity) (Lineage, error) {
	var lineage Lineage
	sequence, err := h.parentOfKind(ctx, entity, model.EntityTypeSequence)
	if err != nil {
		return lineage, err
	}
	lineage.Sequence = sequence
	episode, err := h.parentOfKind(ctx, sequence, model.EntityTypeEpisode)
	if err != nil {
		return lineage, err
	}
	lineage.Episode = episode
	return lineage, nil
}
