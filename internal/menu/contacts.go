package menu

import (
	"context"

	"github.com/starford/assistant/internal/models"
)

func (m *Menu) contactsMenu(ctx context.Context) error {
	return m.choose(ctx, "Contacts", []action{
		{"Add a contact", m.addContact},
		{"Find a contact", m.findContact},
		{"List contacts", m.listContacts},
		{"Edit a contact", m.editContact},
		{"Delete a contact", m.deleteContact},
		{"Import from CSV", m.importer(m.ws.Contacts.Import, "contacts")},
		{"Export to CSV", m.exporter(m.ws.Contacts.Export)},
	}, "Back to main menu")
}

func (m *Menu) addContact(context.Context) error {
	name, err := m.prompt("Name: ")
	if err != nil {
		return err
	}
	phone, err := m.prompt("Phone: ")
	if err != nil {
		return err
	}
	email, err := m.prompt("Email: ")
	if err != nil {
		return err
	}
	c, err := m.ws.Contacts.Add(name, phone, email)
	if err != nil {
		return err
	}
	m.printf("Contact %d added.\n", c.ID)
	return nil
}

func (m *Menu) findContact(context.Context) error {
	info, err := m.prompt("Name or phone: ")
	if err != nil {
		return err
	}
	c, err := m.ws.Contacts.Find(info)
	if err != nil {
		return err
	}
	m.printContact(c)
	return nil
}

func (m *Menu) listContacts(context.Context) error {
	list := m.ws.Contacts.List()
	if len(list) == 0 {
		m.println("No contacts yet.")
		return nil
	}
	for _, c := range list {
		m.printContact(c)
	}
	return nil
}

func (m *Menu) printContact(c models.Contact) {
	m.printf("%d. %s, phone: %s, email: %s\n", c.ID, c.Name, c.Phone, c.Email)
}

func (m *Menu) editContact(context.Context) error {
	info, err := m.prompt("Name or phone: ")
	if err != nil {
		return err
	}
	fields, err := m.promptFields(
		[2]string{"name", "New name"},
		[2]string{"phone", "New phone"},
		[2]string{"email", "New email"},
	)
	if err != nil {
		return err
	}
	if _, err := m.ws.Contacts.Edit(info, models.ContactPatchFromFields(fields)); err != nil {
		return err
	}
	m.println("Contact updated.")
	return nil
}

func (m *Menu) deleteContact(context.Context) error {
	info, err := m.prompt("Name or phone: ")
	if err != nil {
		return err
	}
	if err := m.ws.Contacts.Delete(info); err != nil {
		return err
	}
	m.println("Contact deleted.")
	return nil
}
