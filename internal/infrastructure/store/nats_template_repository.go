// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/logging"
)

// NatsTemplateRepository is the NATS KV store repository for event templates.
type NatsTemplateRepository struct {
	*NatsBaseRepository[models.EventTemplate]
	keyBuilder *KeyBuilder
}

// NewNatsTemplateRepository creates a new NATS KV store repository for event templates.
func NewNatsTemplateRepository(kvStore INatsKeyValue) *NatsTemplateRepository {
	return &NatsTemplateRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.EventTemplate](kvStore, "event template"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// Create stores a new event template, indexed by project.
func (r *NatsTemplateRepository) Create(ctx context.Context, template *models.EventTemplate) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTemplate, template.UID)
	if err := r.NatsBaseRepository.Create(ctx, key, template); err != nil {
		return err
	}

	r.createIndices(ctx, template)
	return nil
}

// Exists checks whether an event template with the given UID exists.
func (r *NatsTemplateRepository) Exists(ctx context.Context, templateUID string) (bool, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTemplate, templateUID)
	return r.NatsBaseRepository.Exists(ctx, key)
}

// Get retrieves an event template by UID.
func (r *NatsTemplateRepository) Get(ctx context.Context, templateUID string) (*models.EventTemplate, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTemplate, templateUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// GetWithRevision retrieves an event template by UID along with its revision.
func (r *NatsTemplateRepository) GetWithRevision(ctx context.Context, templateUID string) (*models.EventTemplate, uint64, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTemplate, templateUID)
	return r.NatsBaseRepository.GetWithRevision(ctx, key)
}

// Update updates an event template using optimistic concurrency control.
func (r *NatsTemplateRepository) Update(ctx context.Context, template *models.EventTemplate, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTemplate, template.UID)
	return r.NatsBaseRepository.Update(ctx, key, template, revision)
}

// Delete removes an event template using optimistic concurrency control.
func (r *NatsTemplateRepository) Delete(ctx context.Context, templateUID string, revision uint64) error {
	// Fetch the template first so the indices can be cleaned up.
	template, err := r.Get(ctx, templateUID)
	if err != nil {
		return err
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTemplate, templateUID)
	if err := r.NatsBaseRepository.Delete(ctx, key, revision); err != nil {
		return err
	}

	r.deleteIndices(ctx, template)
	return nil
}

// ListAll lists all event templates in the store.
func (r *NatsTemplateRepository) ListAll(ctx context.Context) ([]*models.EventTemplate, error) {
	return r.ListEntitiesEncoded(ctx, KeyPrefixTemplate+"/", r.keyBuilder)
}

// createIndices creates the secondary index entries for a template.
// Index failures are logged but do not fail the operation.
func (r *NatsTemplateRepository) createIndices(ctx context.Context, template *models.EventTemplate) {
	if template.ProjectUID == "" {
		return
	}
	indexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexProject, template.ProjectUID, template.UID)
	if err := r.PutIndex(ctx, indexKey); err != nil {
		slog.WarnContext(ctx, "failed to create project index for template",
			logging.ErrKey, err, "template_uid", template.UID, "project_uid", template.ProjectUID)
	}
}

// deleteIndices removes the secondary index entries for a template.
func (r *NatsTemplateRepository) deleteIndices(ctx context.Context, template *models.EventTemplate) {
	if template.ProjectUID == "" {
		return
	}
	indexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexProject, template.ProjectUID, template.UID)
	if err := r.DeleteIndex(ctx, indexKey); err != nil {
		slog.WarnContext(ctx, "failed to delete project index for template",
			logging.ErrKey, err, "template_uid", template.UID, "project_uid", template.ProjectUID)
	}
}
