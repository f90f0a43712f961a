package bookings

import (
	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	"eventmarket/internal/app/queries"
)

// Register binds every booking command and query to the buses.
func Register(cmds *commands.InMemoryBus, qs *queries.InMemoryBus, deps Deps) {
	commands.RegisterHandler[CreateBookingCommand, *dto.Booking](cmds, &CreateBookingHandler{Deps: deps})
	commands.RegisterHandler[RecordPaymentCommand, *dto.Booking](cmds, &RecordPaymentHandler{Deps: deps})
	commands.RegisterHandler[UpdateBookingStatusCommand, *dto.Booking](cmds, &UpdateBookingStatusHandler{Deps: deps})
	commands.RegisterHandler[CancelBookingCommand, *dto.Booking](cmds, &CancelBookingHandler{Deps: deps})
	commands.RegisterHandler[MarkRefundedCommand, *dto.Booking](cmds, &MarkRefundedHandler{Deps: deps})

	queries.RegisterHandler[GetBookingQuery, *dto.BookingDetail](qs, &GetBookingHandler{Deps: deps})
	queries.RegisterHandler[ListBookingsQuery, []dto.BookingListItem](qs, &ListBookingsHandler{Deps: deps})
	queries.RegisterHandler[PaymentScheduleQuery, *dto.PaymentSchedule](qs, &PaymentScheduleHandler{Deps: deps})
	queries.RegisterHandler[RefundQuoteQuery, *dto.RefundQuote](qs, &RefundQuoteHandler{Deps: deps})
}
