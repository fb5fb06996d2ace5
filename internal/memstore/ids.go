// Package memstore fournit des implémentations en mémoire de tous les
// dépôts, pour les tests et le mode STORE_DRIVER=memory.
package memstore

import (
	"bytes"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dermodazzle_back_end/internal/apperr"
)

func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("ID " + what + " invalide")
	}
	return oid, nil
}

// sortedIDs retourne les clés dans l'ordre de création.
func sortedIDs[T any](m map[primitive.ObjectID]T) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	return ids
}
