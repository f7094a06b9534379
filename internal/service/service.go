package service

import (
	"github.com/smartcity/transit-optimizer/internal/domain"
)

// RidershipRepository is re-exported from domain for convenience
type RidershipRepository = domain.RidershipRepository
