package database

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"dermodazzle_back_end/internal/models"
)

// TrackingRepository ajoute et relit les événements de suivi d'une commande
// dans ScyllaDB, partitionnés par commande.
type TrackingRepository struct {
	scylla   *ScyllaManager
	keyspace string
}

func NewTrackingRepository(scylla *ScyllaManager, keyspace string) *TrackingRepository {
	return &TrackingRepository{scylla: scylla, keyspace: keyspace}
}

// EnsureSchema crée la table si le rôle le permet.
func (r *TrackingRepository) EnsureSchema(ctx context.Context) error {
	session, err := r.scylla.GetSession(r.keyspace)
	if err != nil {
		return err
	}
	return session.Query(cqlCreateTrackingTable).WithContext(ctx).Exec()
}

func (r *TrackingRepository) Record(ctx context.Context, ev models.TrackingEvent) error {
	session, err := r.scylla.GetSession(r.keyspace)
	if err != nil {
		return err
	}
	if ev.ID == (gocql.UUID{}) {
		ev.ID = gocql.TimeUUID()
	}
	return session.Query(cqlInsertTrackingEvent,
		ev.OrderID, ev.ID, ev.Kind, ev.Status, ev.TrackingID, ev.CourierPartner, ev.Actor, ev.CreatedAt,
	).WithContext(ctx).Exec()
}

func (r *TrackingRepository) List(ctx context.Context, orderID string) ([]models.TrackingEvent, error) {
	session, err := r.scylla.GetSession(r.keyspace)
	if err != nil {
		return nil, err
	}

	iter := session.Query(cqlSelectTrackingEvents, orderID).WithContext(ctx).Iter()
	events := []models.TrackingEvent{}
	ev := models.TrackingEvent{OrderID: orderID}
	for iter.Scan(&ev.ID, &ev.Kind, &ev.Status, &ev.TrackingID, &ev.CourierPartner, &ev.Actor, &ev.CreatedAt) {
		events = append(events, ev)
		ev = models.TrackingEvent{OrderID: orderID}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture historique %s: %w", orderID, err)
	}
	return events, nil
}
