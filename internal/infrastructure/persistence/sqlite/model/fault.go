package model

type Fault struct {
	FaultID           uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	ReporterName      string  `gorm:"column:reporter_name;type:text;not null"`
	FaultTime         string  `gorm:"column:fault_time;type:text;not null;index"`
	VehicleID         string  `gorm:"column:vehicle_id;type:text;not null;index"`
	Category          string  `gorm:"column:category;type:text;not null"`
	Status            string  `gorm:"column:status;type:text;not null;default:pending;index"`
	Description       string  `gorm:"column:description;type:text;not null"`
	Solution          *string `gorm:"column:solution;type:text"`
	ResolutionLog     *string `gorm:"column:resolution_log;type:text"`
	ResponsiblePerson string  `gorm:"column:responsible_person;type:text;not null"`
	CreatedAt         string  `gorm:"column:created_at;type:text;not null"`
}

func (Fault) TableName() string {
	return "faults"
}
