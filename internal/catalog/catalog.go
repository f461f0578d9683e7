// Package catalog holds the fixed fixtures every seeding run starts from.
package catalog

// Makes is the list of vehicle makes inserted into the make table, one row each.
var Makes = []string{
	"Toyota",
	"Ford",
	"Volkswagen",
	"Honda",
	"Chevrolet",
	"BMW",
	"Mercedes-Benz",
	"Audi",
	"Nissan",
	"Hyundai",
	"Kia",
	"Subaru",
	"Lexus",
	"Mazda",
	"Jaguar",
	"Land Rover",
	"Tesla",
	"Fiat",
	"Peugeot",
	"Renault",
}

// Colors is the palette vehicle colors are sampled from.
var Colors = []string{
	"Black", "White", "Red", "Blue", "Silver", "Grey", "Green",
	"Yellow", "Brown", "Orange", "Purple", "Gold", "Beige",
	"Maroon", "Cyan", "Magenta", "Turquoise", "Pink", "Lavender", "Navy Blue",
}

// EmailDomains are appended to generated emails after the unique suffix.
var EmailDomains = []string{
	"example.com", "mail.ru", "yandex.ru", "gmail.com", "outlook.com", "test.org",
}
