package offers

import (
	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/queries"
)

// Register binds every offer command and query to the buses.
func Register(cmds *commands.InMemoryBus, qs *queries.InMemoryBus, deps Deps) {
	commands.RegisterHandler[CreateOfferCommand, *dto.Offer](cmds, &CreateOfferHandler{Deps: deps})
	commands.RegisterHandler[AcceptOfferCommand, *AcceptOfferResult](cmds, &AcceptOfferHandler{Deps: deps})
	commands.RegisterHandler[RejectOfferCommand, *dto.Offer](cmds, &RejectOfferHandler{Deps: deps})
	commands.RegisterHandler[CancelOfferCommand, *dto.Offer](cmds, &CancelOfferHandler{Deps: deps})
	commands.RegisterHandler[ExpireOffersCommand, *ExpireOffersResult](cmds, &ExpireOffersHandler{Deps: deps})

	queries.RegisterHandler[GetOfferQuery, *dto.Offer](qs, &GetOfferHandler{Deps: deps})
	queries.RegisterHandler[ListOffersQuery, []dto.Offer](qs, &ListOffersHandler{Deps: deps})
}
