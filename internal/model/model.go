package model

// AllModels returns every table in migration-safe order (referenced
// tables before referencing ones).
func AllModels() []interface{} {
	return []interface{}{
		&Institution{},
		&InstitutionNews{},
		&User{},
		&Species{},
		&SpeciesInstitution{},
		&Supplier{},
		&Shipment{},
		&ShipmentItem{},
		&ReleaseEvent{},
		&ReleaseItem{},
	}
}
