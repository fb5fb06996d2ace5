package database

// Requêtes CQL de l'historique de suivi, une partition par commande.
const (
	cqlCreateTrackingTable = `CREATE TABLE IF NOT EXISTS order_tracking_events (
		order_id text,
		event_id timeuuid,
		kind text,
		status text,
		tracking_id text,
		courier_partner text,
		actor text,
		created_at timestamp,
		PRIMARY KEY (order_id, event_id)
	) WITH CLUSTERING ORDER BY (event_id ASC)`

	cqlInsertTrackingEvent = `INSERT INTO order_tracking_events
		(order_id, event_id, kind, status, tracking_id, courier_partner, actor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	cqlSelectTrackingEvents = `SELECT event_id, kind, status, tracking_id, courier_partner, actor, created_at
		FROM order_tracking_events WHERE order_id = ?`
)
