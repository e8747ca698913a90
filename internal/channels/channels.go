package channels

import (
	"sync"

	"github.com/SebastianObert/AirCare/models"
)

type Channels struct {
	RefreshRequest chan models.RefreshRequest
	WG             *sync.WaitGroup
}

func New() *Channels {
	const bufferSize = 100
	return &Channels{
		RefreshRequest: make(chan models.RefreshRequest, bufferSize),
		WG:             &sync.WaitGroup{},
	}
}
