package reservation

import (
	"fmt"

	"hikari/internal/models"
)

// Confirmation is the summary shown after the backend accepted a booking.
type Confirmation struct {
	BookingID int64
	TableName string
	AreaName  string
	Date      string
	Start     string
	Guests    int
	Name      string
	Email     string
	Phone     string
	Status    string
}

// Lines renders the summary as label/value lines.
func (c *Confirmation) Lines() []string {
	lines := []string{fmt.Sprintf("Table: %s", c.TableName)}
	if c.AreaName != "" {
		lines = append(lines, fmt.Sprintf("Area: %s", c.AreaName))
	}
	lines = append(lines,
		fmt.Sprintf("Date: %s at %s", c.Date, c.Start),
		fmt.Sprintf("Guests: %d", c.Guests),
	)
	if c.Name != "" {
		lines = append(lines, fmt.Sprintf("Name: %s", c.Name))
	}
	if c.Email != "" {
		lines = append(lines, fmt.Sprintf("Email: %s", c.Email))
	}
	if c.Phone != "" {
		lines = append(lines, fmt.Sprintf("Phone: %s", c.Phone))
	}
	return append(lines, fmt.Sprintf("Status: %s", c.Status))
}

func tableLabel(name string, id int64) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

// firstNonEmpty prefers the server value over what was typed.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func confirmationFrom(req models.BookingRequest, res *models.Booking, nodeName string) *Confirmation {
	c := &Confirmation{
		Date:   req.Date,
		Start:  req.Start,
		Guests: req.Guests,
		Status: models.MsgPendingStatus,
	}
	var resTable, resArea, resName, resEmail string
	if res != nil {
		c.BookingID = res.ID
		resTable = firstNonEmpty(res.TableName, res.Table.Name)
		resArea = res.AreaName()
		resName = res.Name
		resEmail = res.Email
	}
	c.TableName = tableLabel(firstNonEmpty(nodeName, resTable), req.TableID)
	c.AreaName = resArea
	c.Name = firstNonEmpty(resName, req.Name)
	c.Email = firstNonEmpty(resEmail, req.Email)
	c.Phone = req.Phone
	return c
}
