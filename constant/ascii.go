package constant

// AsciiArtLogo is the application banner shown in the root help output.
const AsciiArtLogo = `
 ___  ___  _ __   ___  _ __ __ _
/ __|/ _ \| '_ \ / _ \| '__/ _' |
\__ \ (_) | | | | (_) | | | (_| |
|___/\___/|_| |_|\___/|_|  \__,_|`
