package urls

// Reference documents for the DLPC350 and the LightCrafter 4500 EVM.
// All point at Texas Instruments' public literature and product pages.

// ProgrammersGuide is the DLPC350 programmer's guide describing every
// USB/I2C command, register layout and the pattern LUT format.
const ProgrammersGuide = "https://www.ti.com/lit/pdf/dlpu010"

// UserGuide is the LightCrafter 4500 EVM user's guide, covering the
// board, its connectors and trigger wiring.
const UserGuide = "https://www.ti.com/lit/pdf/dlpu011"

// ProductPage is the DLPC350 product page with datasheet and firmware
// downloads.
const ProductPage = "https://www.ti.com/product/DLPC350"
